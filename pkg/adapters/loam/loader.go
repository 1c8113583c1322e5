// Package loam loads chains from a Loam document repository, so a chain can
// live in a Markdown file with its nodes in the frontmatter and authoring
// notes in the body.
package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/parley/internal/compiler"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// Loader implements ports.ChainLoader over a typed Loam repository.
type Loader struct {
	repo    *loam.TypedRepository[ChainMetadata]
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

// New wraps an existing repository.
func New(repo *loam.TypedRepository[ChainMetadata], opts ...Option) *Loader {
	l := &Loader{repo: repo, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	l.decoder = compiler.NewDecoder(compiler.WithLogger(l.logger))
	return l
}

// Open initializes a read-only, strictly typed repository at dir.
func Open(dir string, opts ...Option) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ChainMetadata](repo), opts...), nil
}

// Load returns the chain stored in the document named name. The document
// name wins over a different `name` key.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Chain, error) {
	doc, err := l.repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrChainNotFound, name, err)
	}

	meta := doc.Data
	if meta.Name != "" && meta.Name != name {
		l.logger.Warn("chain name differs from document name, using document name",
			"chain", meta.Name, "document", doc.ID)
	}
	chain, err := l.decoder.DecodeValue(name, map[string]any{"nodes": meta.Nodes})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	return chain, nil
}

// List returns the names of documents that carry nodes, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Data.Nodes) == 0 {
			continue
		}
		name := trimExtension(doc.ID)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: chain '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
