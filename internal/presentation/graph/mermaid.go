// Package graph draws chains as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Overlay marks run progress on the chart.
type Overlay struct {
	Visited []int
	Current int
}

// GenerateMermaid produces a Mermaid flowchart of chain. Vertex n<i> is node i.
// Shapes follow the node kind:
//   - line: [Rectangle]
//   - label: ((Circle))
//   - call and jump call: [[Subroutine]]
//   - choice: {Rhombus}
//   - exit: ([Stadium])
//
// Jumps are not drawn as vertices; the edge leading into them goes straight to
// their target. Dotted edges mark targets computed at run time.
func GenerateMermaid(chain *domain.Chain, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	nodes := chain.Nodes()
	// resolve skips over jump nodes so edges land on a drawn vertex.
	resolve := func(i int) (int, bool) {
		for hops := 0; i < len(nodes) && hops <= len(nodes); hops++ {
			j, ok := nodes[i].(*domain.Jump)
			if !ok {
				return i, true
			}
			target, found := chain.LabelIndex(j.Label)
			if !found {
				return 0, false
			}
			i = target
		}
		return 0, false
	}
	edge := func(from, to int, label string) {
		target, ok := resolve(to)
		if !ok {
			if to >= len(nodes) {
				return
			}
			fmt.Fprintf(&sb, "    n%d -.-> missing%d[\"missing label\"]\n", from, from)
			return
		}
		if label == "" {
			fmt.Fprintf(&sb, "    n%d --> n%d\n", from, target)
			return
		}
		fmt.Fprintf(&sb, "    n%d -- \"%s\" --> n%d\n", from, escape(label), target)
	}

	for i, node := range nodes {
		switch n := node.(type) {
		case *domain.SpokenLine:
			text := ""
			if len(n.Lines) > 0 {
				text = n.Lines[0]
			}
			fmt.Fprintf(&sb, "    n%d[\"%s: %s\"]\n", i, escape(n.Speaker), escape(truncate(text, 32)))
			edge(i, i+1, "")
		case *domain.Label:
			fmt.Fprintf(&sb, "    n%d((\"%s\"))\n", i, escape(n.Name))
			edge(i, i+1, "")
		case *domain.Jump:
		case *domain.MethodCall:
			fmt.Fprintf(&sb, "    n%d[[\"%s\"]]\n", i, escape(strings.Join(append([]string{n.Method}, n.Args...), " ")))
			edge(i, i+1, "")
		case *domain.JumpMethodCall:
			fmt.Fprintf(&sb, "    n%d[[\"%s\"]]\n", i, escape(strings.Join(append([]string{n.Method}, n.Args...), " ")))
			if next, ok := resolve(i + 1); ok {
				fmt.Fprintf(&sb, "    n%d -. \"result\" .-> n%d\n", i, next)
			}
		case *domain.Choice:
			fmt.Fprintf(&sb, "    n%d{\"choice\"}\n", i)
			for _, opt := range n.Options {
				target, ok := chain.LabelIndex(opt.Label)
				if !ok {
					fmt.Fprintf(&sb, "    n%d -. \"%s\" .-> missing%d[\"missing label\"]\n", i, escape(opt.Text), i)
					continue
				}
				edge(i, target, truncate(opt.Text, 24))
			}
		case *domain.Exit:
			fmt.Fprintf(&sb, "    n%d([\"exit %d\"])\n", i, n.Code)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on light fills in either theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int]bool)
		for _, v := range overlay.Visited {
			if v, ok := resolve(v); ok && !seen[v] {
				seen[v] = true
				fmt.Fprintf(&sb, "    class n%d visited;\n", v)
			}
		}
		if cur, ok := resolve(overlay.Current); ok && cur < len(nodes) {
			fmt.Fprintf(&sb, "    class n%d current;\n", cur)
		}
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
