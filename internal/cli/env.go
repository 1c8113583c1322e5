// Package cli holds the command implementations behind cmd/parley.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/loam"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/process"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/ports"
)

// Options are the persistent flags shared by every command. Non-empty values
// override the config file.
type Options struct {
	ConfigPath string
	Dir        string
	RedisAddr  string
	Debug      bool
}

// Env is everything a command needs once flags and config are resolved.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Loader   ports.ChainLoader
	Speakers ports.SpeakerDirectory
	// Tools holds the external commands from the tools file, if any.
	Tools    *process.Runner
	debug    bool
	closers  []func() error
}

// Setup loads the config, applies flag overrides, opens the chain source and
// reads the tools file.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Dir != "" {
		cfg.ChainsDir = opts.Dir
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	env := &Env{
		Config:   cfg,
		Logger:   logger,
		Speakers: memory.NewDirectory(cfg.SpeakerList()...),
		debug:    opts.Debug,
	}

	switch source := cfg.ChainSource(); source {
	case config.SourceRedis:
		repo := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithLogger(logger),
		)
		env.Loader = repo
		env.closers = append(env.closers, repo.Close)
		logger.Debug("chain source", "kind", source, "addr", cfg.Redis.Addr)
	case config.SourceLoam:
		repo, err := loam.Open(cfg.ChainsDir, loam.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		env.Loader = repo
		logger.Debug("chain source", "kind", source, "dir", cfg.ChainsDir)
	default:
		env.Loader = file.New(cfg.ChainsDir, file.WithLogger(logger))
		logger.Debug("chain source", "kind", source, "dir", cfg.ChainsDir)
	}

	tools, err := process.LoadTools(cfg.Tools)
	if err != nil {
		return nil, errors.Join(err, env.Close())
	}
	if len(tools) > 0 {
		env.Tools = process.NewRunner(process.WithTools(tools...), process.WithLogger(logger))
		logger.Debug("tools loaded", "file", cfg.Tools, "count", len(tools))
	}
	return env, nil
}

// NewEngine builds an engine over the environment's loader and speakers.
func (e *Env) NewEngine(extra ...parley.Option) *parley.Engine {
	opts := []parley.Option{
		parley.WithLogger(e.Logger),
		parley.WithLoader(e.Loader),
		parley.WithSpeakers(e.Speakers),
	}
	if e.Tools != nil {
		opts = append(opts, parley.WithProviders(e.Tools))
	}
	if e.debug {
		opts = append(opts, parley.WithLifecycleHooks(debugHooks(e.Logger)))
	}
	return parley.New(append(opts, extra...)...)
}

// Close releases the chain source.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	return errors.Join(errs...)
}
