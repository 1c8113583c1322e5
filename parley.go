package parley

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/builtins"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/variables"
)

// Version is the library version, overridden at build time.
var Version = "0.1.0-dev"

// ErrNoLoader is returned by RunChain and Chains when no ChainLoader was configured.
var ErrNoLoader = errors.New("no chain loader configured")

// Engine is the high-level entry point. It owns the dialogue function
// registry, the variable store and the driver, and wires them together.
type Engine struct {
	runtime   *runtime.Engine
	functions *registry.Registry
	vars      *variables.Store

	loader    ports.ChainLoader
	speakers  ports.SpeakerDirectory
	resolver  ports.SingletonResolver
	hooks     []domain.LifecycleHooks
	providers []registry.Provider
	observer  registry.InvokeObserver
	sleep     runtime.SleepFunc
	builtins  bool
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLoader sets where RunChain finds chains.
func WithLoader(loader ports.ChainLoader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithSpeakers sets the speaker directory used to name line speakers.
func WithSpeakers(speakers ports.SpeakerDirectory) Option {
	return func(e *Engine) {
		e.speakers = speakers
	}
}

// WithResolver sets the singleton lookup for instance-bound dialogue functions.
func WithResolver(resolver ports.SingletonResolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// WithLifecycleHooks subscribes hooks for the lifetime of the engine.
func WithLifecycleHooks(hooks ...domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks...)
	}
}

// WithProviders adds dialogue function tables, scanned on first use.
func WithProviders(providers ...registry.Provider) Option {
	return func(e *Engine) {
		e.providers = append(e.providers, providers...)
	}
}

// WithInvokeObserver is notified after every dialogue function call.
func WithInvokeObserver(observer registry.InvokeObserver) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithSleep replaces how forced delays are awaited.
func WithSleep(sleep runtime.SleepFunc) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// WithoutBuiltins leaves the standard dialogue functions unregistered.
func WithoutBuiltins() Option {
	return func(e *Engine) {
		e.builtins = false
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{builtins: true}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNop(e.logger)

	e.vars = variables.New(variables.WithLogger(e.logger))

	regOpts := []registry.Option{
		registry.WithLogger(e.logger),
		registry.WithResolver(e.resolver),
		registry.WithObserver(e.observer),
		registry.WithProviders(e.providers...),
	}
	e.functions = registry.NewRegistry(regOpts...)

	e.runtime = runtime.NewEngine(
		runtime.WithLogger(e.logger),
		runtime.WithInvoker(e.functions),
		runtime.WithSpeakers(e.speakers),
		runtime.WithSleep(e.sleep),
		runtime.WithHooks(e.hooks...),
	)

	if e.builtins {
		e.functions.Provide(builtins.New(e.vars, e.runtime, e.logger))
	}
	return e
}

// Run executes chain to completion and returns its exit code.
func (e *Engine) Run(ctx context.Context, chain *domain.Chain) (int, error) {
	return e.runtime.Run(ctx, chain)
}

// RunChain loads the named chain and runs it.
func (e *Engine) RunChain(ctx context.Context, name string) (int, error) {
	if e.loader == nil {
		return 0, ErrNoLoader
	}
	chain, err := e.loader.Load(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.Run(ctx, chain)
}

// Chains lists the chains available from the loader.
func (e *Engine) Chains(ctx context.Context) ([]string, error) {
	if e.loader == nil {
		return nil, ErrNoLoader
	}
	return e.loader.List(ctx)
}

// Continue answers the pending continue wait.
func (e *Engine) Continue() bool {
	return e.runtime.ContinueRun()
}

// Skip fast-forwards the line being revealed.
func (e *Engine) Skip() bool {
	return e.runtime.SkipCurrentReveal()
}

// Choose selects an option of the choice being presented.
func (e *Engine) Choose(index int) error {
	return e.runtime.Choose(index)
}

// QueueDelay inserts a forced wait before the next node.
func (e *Engine) QueueDelay(d time.Duration) {
	e.runtime.QueueDelay(d)
}

// Subscribe adds a lifecycle subscriber and returns a function removing it.
func (e *Engine) Subscribe(hooks domain.LifecycleHooks) func() {
	return e.runtime.Subscribe(hooks)
}

// Running reports whether a run is active.
func (e *Engine) Running() bool {
	return e.runtime.Running()
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() domain.Session {
	return e.runtime.Snapshot()
}

// Functions returns the dialogue function registry.
func (e *Engine) Functions() *registry.Registry {
	return e.functions
}

// Variables returns the variable store shared by the builtins.
func (e *Engine) Variables() *variables.Store {
	return e.vars
}

// Loader returns the configured chain loader, or nil.
func (e *Engine) Loader() ports.ChainLoader {
	return e.loader
}

// Reset drops every registered dialogue function and clears the variables so
// nothing leaks into the next independent run. Providers are scanned again on
// the next call. Resetting during a run fails with domain.ErrAlreadyRunning.
func (e *Engine) Reset() error {
	if e.runtime.Running() {
		return domain.ErrAlreadyRunning
	}
	e.functions.Reset()
	e.vars.Clear()
	return nil
}
