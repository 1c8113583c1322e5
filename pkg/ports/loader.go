package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// ChainLoader retrieves compiled chains by name. This decouples the engine from
// where the offline compiler's output lives (memory, files, redis).
type ChainLoader interface {
	// Load returns the named chain, or domain.ErrChainNotFound.
	Load(ctx context.Context, name string) (*domain.Chain, error)

	// List returns the available chain names, sorted.
	List(ctx context.Context) ([]string, error)
}
