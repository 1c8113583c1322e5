// Package variables holds per-session transient dialogue state as a stack of
// named scopes. Only the top scope is ever read or written.
package variables

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/parley/internal/logging"
	"github.com/spf13/cast"
)

type scope map[string]any

// Store is a stack of scopes with case-insensitive keys.
// A Store always holds at least one scope.
type Store struct {
	mu     sync.Mutex
	scopes []scope
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger configures the logger used for type mismatches.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrNop(logger)
	}
}

// New creates a store with exactly one empty scope.
func New(opts ...Option) *Store {
	s := &Store{
		scopes: []scope{make(scope)},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push opens a new empty scope on top.
func (s *Store) Push() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = append(s.scopes, make(scope))
}

// Pop discards the top scope. The last scope is never popped; use Clear to
// empty it. Reports whether a scope was removed.
func (s *Store) Pop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scopes) <= 1 {
		s.logger.Error("cannot pop the root variable scope")
		return false
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	return true
}

// Depth returns the number of scopes.
func (s *Store) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scopes)
}

// Clear discards every scope and pushes one fresh scope.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = []scope{make(scope)}
}

// Lookup returns the raw value stored under name in the top scope.
func (s *Store) Lookup(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.top()
	if top == nil {
		return nil, false
	}
	v, ok := top[strings.ToLower(name)]
	return v, ok
}

// SetValue writes value under name in the top scope.
func (s *Store) SetValue(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.top()
	if top == nil {
		return
	}
	top[strings.ToLower(name)] = value
}

// Delete removes name from the top scope and reports whether it existed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.top()
	if top == nil {
		return false
	}
	key := strings.ToLower(name)
	if _, ok := top[key]; !ok {
		return false
	}
	delete(top, key)
	return true
}

// Names lists the variables of the top scope, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.top()
	names := make([]string, 0, len(top))
	for k := range top {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// top must be called with mu held.
func (s *Store) top() scope {
	if len(s.scopes) == 0 {
		s.logger.Error("variable store has no scope")
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

// Get returns the value of name in the top scope when it is exactly a T.
// When T is string any stored value is returned in its string form.
// Otherwise fallback is returned.
func Get[T any](s *Store, name string, fallback T) T {
	v, ok := s.Lookup(name)
	if !ok {
		return fallback
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	if _, wantString := any(fallback).(string); wantString {
		str, err := cast.ToStringE(v)
		if err != nil {
			str = fmt.Sprint(v)
		}
		return any(str).(T)
	}
	s.logger.Error("variable type mismatch",
		"name", name,
		"stored", fmt.Sprintf("%T", v),
		"requested", fmt.Sprintf("%T", fallback),
	)
	return fallback
}

// Set writes value under name in the top scope, inserting or overwriting.
func Set[T any](s *Store, name string, value T) {
	s.SetValue(name, value)
}
