package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// Loader implements ports.ChainLoader over chains held in memory.
type Loader struct {
	mu     sync.RWMutex
	chains map[string]*domain.Chain
}

// NewLoader creates a loader holding chains, keyed by their names.
func NewLoader(chains ...*domain.Chain) *Loader {
	l := &Loader{chains: make(map[string]*domain.Chain, len(chains))}
	for _, c := range chains {
		l.Put(c)
	}
	return l
}

// Put adds or replaces a chain.
func (l *Loader) Put(chain *domain.Chain) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chains[chain.Name()] = chain
}

// Load returns the named chain.
func (l *Loader) Load(_ context.Context, name string) (*domain.Chain, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.chains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainNotFound, name)
	}
	return c, nil
}

// List returns all chain names, sorted.
func (l *Loader) List(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.chains))
	for name := range l.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
