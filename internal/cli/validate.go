package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/parley/internal/compiler"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/ports"
)

// Validate checks the named chains, or every chain when names is empty, and
// writes one line per problem. It returns the number of problems found.
func Validate(ctx context.Context, loader ports.ChainLoader, names []string, w io.Writer) (int, error) {
	if len(names) == 0 {
		var err error
		if names, err = loader.List(ctx); err != nil {
			return 0, fmt.Errorf("list chains: %w", err)
		}
	}

	problems := 0
	for _, name := range names {
		chain, err := loader.Load(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", name, err)
			problems++
			continue
		}
		for _, issue := range compiler.Validate(chain) {
			fmt.Fprintf(w, "%s: %s\n", name, issue)
			problems++
		}
	}
	return problems, nil
}

// List writes the available chain names, one per line.
func List(ctx context.Context, loader ports.ChainLoader, w io.Writer) error {
	names, err := loader.List(ctx)
	if err != nil {
		return fmt.Errorf("list chains: %w", err)
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

// Graph writes the named chain as a Mermaid flowchart.
func Graph(ctx context.Context, loader ports.ChainLoader, name string, w io.Writer) error {
	chain, err := loader.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load chain %q: %w", name, err)
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(chain, nil))
	return err
}
