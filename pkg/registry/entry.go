package registry

import (
	"fmt"
	"reflect"
)

// Entry is one row of an explicit registration table.
type Entry struct {
	Name    string
	Adapter Adapter

	owner reflect.Type
	bind  func(instance any) (Adapter, error)
}

// Static registers a free function under name.
func Static(name string, adapter Adapter) Entry {
	return Entry{Name: name, Adapter: adapter}
}

// Bound registers a method of O under name. At registration time the
// SingletonResolver must report exactly one live O, which bind receives.
func Bound[O any](name string, bind func(O) Adapter) Entry {
	return Entry{
		Name:  name,
		owner: reflect.TypeFor[O](),
		bind: func(instance any) (Adapter, error) {
			o, ok := instance.(O)
			if !ok {
				return Adapter{}, fmt.Errorf("instance %T is not a %s", instance, reflect.TypeFor[O]())
			}
			return bind(o), nil
		},
	}
}

// IsBound reports whether the entry needs a singleton instance.
func (e Entry) IsBound() bool {
	return e.bind != nil
}

// Owner returns the type an instance-bound entry is declared on.
func (e Entry) Owner() reflect.Type {
	return e.owner
}

// Provider contributes a table of dialogue functions. Providers are scanned
// lazily on the first Invoke and again on Refresh.
type Provider interface {
	DialogueFunctions() []Entry
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func() []Entry

// DialogueFunctions implements Provider.
func (f ProviderFunc) DialogueFunctions() []Entry {
	return f()
}
