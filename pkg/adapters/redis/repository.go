// Package redis stores compiled chain documents in Redis so several frontends
// can share one set of chains.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/parley/internal/compiler"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// DefaultPrefix namespaces every key written by the repository.
const DefaultPrefix = "parley:"

// Repository implements ports.ChainLoader on Redis. Each chain is one string
// key holding its YAML document; a set indexes the names.
type Repository struct {
	client  *backend.Client
	prefix  string
	ttl     time.Duration
	decoder *compiler.Decoder
	logger  *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// WithTTL expires stored chains after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logging.OrNop(logger)
	}
}

// New connects to addr.
func New(addr, password string, db int, opts ...Option) *Repository {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.decoder = compiler.NewDecoder(compiler.WithLogger(r.logger))
	return r
}

func (r *Repository) key(name string) string {
	return r.prefix + "chain:" + name
}

func (r *Repository) indexKey() string {
	return r.prefix + "chains"
}

// Put encodes and stores chain under its name.
func (r *Repository) Put(ctx context.Context, chain *domain.Chain) error {
	data, err := compiler.Encode(chain)
	if err != nil {
		return err
	}
	return r.write(ctx, chain.Name(), data)
}

// PutDocument stores a raw chain document after checking that it decodes.
func (r *Repository) PutDocument(ctx context.Context, name string, data []byte) error {
	if _, err := r.decoder.Decode(name, data); err != nil {
		return fmt.Errorf("reject chain %s: %w", name, err)
	}
	return r.write(ctx, name, data)
}

func (r *Repository) write(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.New("chain name is empty")
	}
	_, err := r.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, r.key(name), data, r.ttl)
		pipe.SAdd(ctx, r.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store chain %s: %w", name, err)
	}
	r.logger.Debug("chain stored", "chain", name, "bytes", len(data))
	return nil
}

// Load fetches and decodes the named chain.
func (r *Repository) Load(ctx context.Context, name string) (*domain.Chain, error) {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load chain %s: %w", name, err)
	}

	chain, err := r.decoder.Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decode chain %s: %w", name, err)
	}
	if chain.Name() != name {
		chain = domain.NewChain(name, chain.Nodes()...)
	}
	return chain, nil
}

// List returns the stored chain names, sorted. Names whose document expired
// are dropped from the index.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	if len(names) == 0 {
		return names, nil
	}

	pipe := r.client.Pipeline()
	exists := make([]*backend.IntCmd, len(names))
	for i, name := range names {
		exists[i] = pipe.Exists(ctx, r.key(name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}

	live := make([]string, 0, len(names))
	var stale []any
	for i, name := range names {
		if exists[i].Val() > 0 {
			live = append(live, name)
		} else {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.indexKey(), stale...).Err(); err != nil {
			r.logger.Warn("failed to prune expired chains from index", "err", err)
		}
	}
	sort.Strings(live)
	return live, nil
}

// Delete removes the named chain. Deleting a missing chain is not an error.
func (r *Repository) Delete(ctx context.Context, name string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, r.key(name))
		pipe.SRem(ctx, r.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete chain %s: %w", name, err)
	}
	return nil
}

// Close releases the client.
func (r *Repository) Close() error {
	return r.client.Close()
}
