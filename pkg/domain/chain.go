package domain

import "strings"

// Chain is an immutable, ordered sequence of nodes with a label lookup table
// built once at construction. Indices are stable for the lifetime of the chain.
type Chain struct {
	name   string
	nodes  []Node
	labels map[string]int
}

// NewChain builds a chain. Label names are matched case-insensitively; when a
// name is declared twice the first node by index wins.
func NewChain(name string, nodes ...Node) *Chain {
	c := &Chain{
		name:   name,
		nodes:  make([]Node, len(nodes)),
		labels: make(map[string]int),
	}
	copy(c.nodes, nodes)

	for i, n := range c.nodes {
		l, ok := n.(*Label)
		if !ok || l.Name == "" {
			continue
		}
		key := strings.ToLower(l.Name)
		if _, exists := c.labels[key]; !exists {
			c.labels[key] = i
		}
	}
	return c
}

// Name returns the chain's name.
func (c *Chain) Name() string {
	return c.name
}

// Len returns the number of nodes.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// FirstIndex is where a run starts.
func (c *Chain) FirstIndex() int {
	return 0
}

// At returns the node at index, or nil when index is out of bounds.
func (c *Chain) At(index int) Node {
	if index < 0 || index >= len(c.nodes) {
		return nil
	}
	return c.nodes[index]
}

// Nodes returns a copy of the node sequence.
func (c *Chain) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// IndexOf returns the index of n (by identity), or -1.
func (c *Chain) IndexOf(n Node) int {
	for i, candidate := range c.nodes {
		if candidate == n {
			return i
		}
	}
	return -1
}

// LabelIndex resolves a label name to a node index.
func (c *Chain) LabelIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	i, ok := c.labels[strings.ToLower(name)]
	return i, ok
}

// Labels returns the declared label names in node order, first declarations only.
func (c *Chain) Labels() []string {
	out := make([]string, 0, len(c.labels))
	for _, n := range c.nodes {
		l, ok := n.(*Label)
		if !ok {
			continue
		}
		if i, found := c.LabelIndex(l.Name); found && c.nodes[i] == n {
			out = append(out, l.Name)
		}
	}
	return out
}
