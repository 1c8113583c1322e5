package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Func is the uniform shape every dialogue function is invoked through.
type Func func(args []string) string

// Outcome classifies a single Invoke for observers.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeUnknown Outcome = "unknown"
	OutcomeArity   Outcome = "arity_mismatch"
	OutcomePanic   Outcome = "panic"
)

// InvokeObserver is notified after every Invoke.
type InvokeObserver func(name string, outcome Outcome, elapsed time.Duration)

type origin int

const (
	originManual origin = iota
	originProvider
)

type method struct {
	name    string
	adapter Adapter
	origin  origin
}

// Registry maps case-insensitive names to dialogue functions. Names are
// insert-only: a second registration of a name is rejected and the first kept.
type Registry struct {
	mu         sync.RWMutex
	methods    map[string]*method
	providers  []Provider
	discovered bool

	resolver ports.SingletonResolver
	observer InvokeObserver
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logging.OrNop(logger)
	}
}

// WithResolver configures the singleton lookup used for instance-bound entries.
func WithResolver(resolver ports.SingletonResolver) Option {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithObserver configures a callback notified after every Invoke.
func WithObserver(observer InvokeObserver) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// WithProviders adds registration tables scanned on first use.
func WithProviders(providers ...Provider) Option {
	return func(r *Registry) {
		r.providers = append(r.providers, providers...)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		methods: make(map[string]*method),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a raw (args) -> string function under name.
func (r *Registry) Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("dialogue function %q is nil", name)
	}
	return r.Add(Static(name, RawFunc(fn)))
}

// Add registers entries immediately. Every rejected entry contributes to the
// returned error; accepted entries stay registered.
func (r *Registry) Add(entries ...Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := r.insert(e, originManual); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Provide appends registration tables. They are scanned on the next Invoke.
func (r *Registry) Provide(providers ...Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, providers...)
	r.discovered = false
}

// Refresh drops every provider-sourced function and scans the providers again.
func (r *Registry) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discover()
}

// Reset removes every registered function. Providers are kept and will be
// scanned again on the next Invoke.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = make(map[string]*method)
	r.discovered = false
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.ensureDiscovered()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.methods[normalize(name)]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.ensureDiscovered()
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls the function registered under name. It never fails: unknown
// names, argument count mismatches and panics are logged and yield "".
func (r *Registry) Invoke(name string, args []string) string {
	r.ensureDiscovered()

	key := normalize(name)
	r.mu.RLock()
	m, ok := r.methods[key]
	r.mu.RUnlock()

	start := time.Now()
	if !ok {
		r.logger.Warn("unknown dialogue function", "method", name)
		r.observe(key, OutcomeUnknown, 0)
		return ""
	}

	if m.adapter.arity != variadic && len(args) != m.adapter.arity {
		r.logger.Error("dialogue function argument count mismatch",
			"method", m.name,
			"want", m.adapter.arity,
			"got", len(args),
		)
		r.observe(key, OutcomeArity, 0)
		return ""
	}

	result, outcome := r.call(m, args)
	r.observe(key, outcome, time.Since(start))
	return result
}

func (r *Registry) call(m *method, args []string) (result string, outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("dialogue function panicked", "method", m.name, "panic", rec)
			result, outcome = "", OutcomePanic
		}
	}()
	if args == nil {
		args = []string{}
	}
	return m.adapter.call(&coercer{logger: r.logger, method: m.name}, args), OutcomeOK
}

func (r *Registry) observe(name string, outcome Outcome, elapsed time.Duration) {
	if r.observer != nil {
		r.observer(name, outcome, elapsed)
	}
}

func (r *Registry) ensureDiscovered() {
	r.mu.RLock()
	done := r.discovered
	r.mu.RUnlock()
	if done {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.discovered {
		r.discover()
	}
}

// discover must be called with mu held.
func (r *Registry) discover() {
	for name, m := range r.methods {
		if m.origin == originProvider {
			delete(r.methods, name)
		}
	}
	for _, p := range r.providers {
		for _, e := range p.DialogueFunctions() {
			// Rejections are logged by insert; discovery carries on.
			_ = r.insert(e, originProvider)
		}
	}
	r.discovered = true
	r.logger.Debug("dialogue functions discovered", "count", len(r.methods), "providers", len(r.providers))
}

// insert must be called with mu held.
func (r *Registry) insert(e Entry, o origin) error {
	key := normalize(e.Name)
	if key == "" {
		r.logger.Error("dialogue function registered without a name")
		return errors.New("dialogue function name is empty")
	}
	if _, exists := r.methods[key]; exists {
		r.logger.Error("dialogue function already registered, keeping the first", "method", key)
		return fmt.Errorf("%w: %s", domain.ErrDuplicateMethod, key)
	}

	adapter := e.Adapter
	if e.IsBound() {
		bound, err := r.bind(e)
		if err != nil {
			r.logger.Error("instance dialogue function skipped", "method", key, "err", err)
			return err
		}
		adapter = bound
	}
	if !adapter.valid() {
		r.logger.Error("dialogue function has no adapter", "method", key)
		return fmt.Errorf("dialogue function %q has no adapter", key)
	}

	r.methods[key] = &method{name: key, adapter: adapter, origin: o}
	return nil
}

func (r *Registry) bind(e Entry) (Adapter, error) {
	if r.resolver == nil {
		return Adapter{}, fmt.Errorf("no singleton resolver for %s", e.owner)
	}
	instances := r.resolver.Instances(e.owner)
	if len(instances) != 1 {
		return Adapter{}, fmt.Errorf("want exactly one live %s, found %d", e.owner, len(instances))
	}
	return e.bind(instances[0])
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
