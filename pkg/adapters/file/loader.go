// Package file loads compiled chain documents from a directory.
//
// Each file named <chain>.yaml, <chain>.yml or <chain>.json holds one chain;
// the file name is the chain name.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/parley/internal/compiler"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// Extensions are the file extensions recognised as chain documents, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.ChainLoader over a directory.
type Loader struct {
	dir     string
	decoder *compiler.Decoder
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logging.OrNop(logger)
	}
}

// New creates a loader reading dir.
func New(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	l.decoder = compiler.NewDecoder(compiler.WithLogger(l.logger))
	return l
}

// Dir returns the directory the loader reads.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads and decodes the named chain. Documents are read on every call,
// so edits are picked up without restarting.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid name %q", domain.ErrChainNotFound, name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(l.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read chain %s: %w", name, err)
		}

		chain, err := l.decoder.Decode(name, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if chain.Name() != name {
			l.logger.Warn("chain document name differs from file name, using file name",
				"file", path, "document", chain.Name())
			chain = domain.NewChain(name, chain.Nodes()...)
		}
		return chain, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", domain.ErrChainNotFound, name, l.dir)
}

// List returns the names of the chain documents in the directory, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list chains in %s: %w", l.dir, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !recognised(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func recognised(ext string) bool {
	for _, e := range Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
