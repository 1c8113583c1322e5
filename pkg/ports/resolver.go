package ports

import "reflect"

// SingletonResolver returns the live instances of a type. Instance-bound
// dialogue functions are only registered when exactly one instance exists.
type SingletonResolver interface {
	Instances(t reflect.Type) []any
}
