package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Issue is an authoring problem found by Validate. None of them stop a run;
// the engine logs and falls through instead.
type Issue struct {
	Index   int
	Kind    domain.NodeKind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("node %d (%s): %s", i.Index, i.Kind, i.Message)
}

// Validate reports static problems: targets naming unknown labels, labels
// declared twice, lines without text, choices without options, calls
// without a function name and nodes no path reaches.
func Validate(chain *domain.Chain) []Issue {
	var issues []Issue
	report := func(i int, n domain.Node, format string, args ...any) {
		issues = append(issues, Issue{Index: i, Kind: n.Kind(), Message: fmt.Sprintf(format, args...)})
	}
	target := func(i int, n domain.Node, label string) {
		if _, ok := chain.LabelIndex(label); !ok {
			report(i, n, "unknown label %q", label)
		}
	}

	for i, node := range chain.Nodes() {
		switch n := node.(type) {
		case *domain.SpokenLine:
			if len(n.Lines) == 0 {
				report(i, n, "no lines for speaker %q", n.Speaker)
			}
		case *domain.Label:
			if first, _ := chain.LabelIndex(n.Name); first != i {
				report(i, n, "label %q already declared at node %d", strings.ToLower(n.Name), first)
			}
		case *domain.Jump:
			target(i, n, n.Label)
		case *domain.MethodCall:
			if n.Method == "" {
				report(i, n, "empty function name")
			}
		case *domain.JumpMethodCall:
			if n.Method == "" {
				report(i, n, "empty function name")
			}
		case *domain.Choice:
			if len(n.Options) == 0 {
				report(i, n, "no options")
			}
			for _, opt := range n.Options {
				target(i, n, opt.Label)
			}
		}
	}

	reached := reachable(chain)
	for i, node := range chain.Nodes() {
		if !reached[i] {
			report(i, node, "unreachable")
		}
	}
	return issues
}

// reachable walks control flow from the first node. Unresolved targets fall
// through like the engine does, and a jump call may land on any label.
func reachable(chain *domain.Chain) []bool {
	nodes := chain.Nodes()
	seen := make([]bool, len(nodes))
	stack := []int{0}
	push := func(i int) {
		if i >= 0 && i < len(nodes) && !seen[i] {
			stack = append(stack, i)
		}
	}
	jumpTo := func(i int, label string) {
		if t, ok := chain.LabelIndex(label); ok {
			push(t)
			return
		}
		push(i + 1)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i >= len(nodes) || seen[i] {
			continue
		}
		seen[i] = true

		switch n := nodes[i].(type) {
		case *domain.Exit:
		case *domain.Jump:
			jumpTo(i, n.Label)
		case *domain.Choice:
			if len(n.Options) == 0 {
				push(i + 1)
			}
			for _, opt := range n.Options {
				jumpTo(i, opt.Label)
			}
		case *domain.MethodCall, *domain.JumpMethodCall:
			push(i + 1)
			for _, label := range chain.Labels() {
				jumpTo(i, label)
			}
		default:
			push(i + 1)
		}
	}
	return seen
}
