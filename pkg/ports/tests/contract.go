package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// ChainLoaderContractTest is a reusable suite verifying that an adapter complies
// with ports.ChainLoader. want maps each chain the loader holds to its node count.
func ChainLoaderContractTest(t *testing.T, loader ports.ChainLoader, want map[string]int) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for name, count := range want {
			chain, err := loader.Load(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading chain %s: %v", name, err)
			}
			if chain.Name() != name {
				t.Errorf("chain name mismatch: got %q, want %q", chain.Name(), name)
			}
			if chain.Len() != count {
				t.Errorf("node count mismatch for %s: got %d, want %d", name, chain.Len(), count)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-chain")
		if !errors.Is(err, domain.ErrChainNotFound) {
			t.Errorf("expected ErrChainNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing chains: %v", err)
		}
		if len(names) != len(want) {
			t.Errorf("expected %d chains, got %d (%v)", len(want), len(names), names)
		}
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("names not sorted: %v", names)
				break
			}
		}
		for _, name := range names {
			if _, ok := want[name]; !ok {
				t.Errorf("unexpected chain %q in list", name)
			}
		}
	})
}
