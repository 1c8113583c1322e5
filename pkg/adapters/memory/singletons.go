package memory

import (
	"reflect"
	"sync"
)

// Singletons implements ports.SingletonResolver for objects tracked explicitly
// by the host application.
type Singletons struct {
	mu        sync.RWMutex
	instances map[reflect.Type][]any
}

// NewSingletons creates a resolver tracking instances.
func NewSingletons(instances ...any) *Singletons {
	s := &Singletons{instances: make(map[reflect.Type][]any)}
	for _, i := range instances {
		s.Track(i)
	}
	return s
}

// Track records a live instance under its dynamic type.
func (s *Singletons) Track(instance any) {
	if instance == nil {
		return
	}
	t := reflect.TypeOf(instance)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[t] = append(s.instances[t], instance)
}

// Forget removes a previously tracked instance.
func (s *Singletons) Forget(instance any) {
	if instance == nil {
		return
	}
	t := reflect.TypeOf(instance)
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.instances[t]
	for i, cur := range list {
		if cur == instance {
			s.instances[t] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Instances returns the live instances of t.
func (s *Singletons) Instances(t reflect.Type) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]any, len(s.instances[t]))
	copy(out, s.instances[t])
	return out
}
