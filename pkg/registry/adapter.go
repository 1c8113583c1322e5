package registry

// Style is the calling convention a dialogue function was registered with.
type Style int

const (
	// StyleRawAction: func(args []string)
	StyleRawAction Style = iota
	// StyleRawFunc: func(args []string) string
	StyleRawFunc
	// StyleTypedAction: func(A, B, ...) with coerced primitive parameters
	StyleTypedAction
	// StyleTypedFunc: func(A, B, ...) string with coerced primitive parameters
	StyleTypedFunc
	// StyleNullaryAction: func()
	StyleNullaryAction
	// StyleNullaryFunc: func() string
	StyleNullaryFunc
)

func (s Style) String() string {
	switch s {
	case StyleRawAction:
		return "raw_action"
	case StyleRawFunc:
		return "raw_func"
	case StyleTypedAction:
		return "typed_action"
	case StyleTypedFunc:
		return "typed_func"
	case StyleNullaryAction:
		return "nullary_action"
	case StyleNullaryFunc:
		return "nullary_func"
	default:
		return "unknown"
	}
}

// variadic marks adapters that accept any number of arguments.
const variadic = -1

// Adapter wraps a Go function into the uniform (args) -> string shape.
// Build one with the constructors below; the zero value is not usable.
type Adapter struct {
	style Style
	arity int
	call  func(c *coercer, args []string) string
}

// Style returns the calling convention.
func (a Adapter) Style() Style {
	return a.style
}

// Arity returns the declared parameter count, or -1 for raw adapters.
func (a Adapter) Arity() int {
	return a.arity
}

func (a Adapter) valid() bool {
	return a.call != nil
}

// Raw adapts a function that receives the argument array and returns nothing.
func Raw(fn func(args []string)) Adapter {
	return Adapter{style: StyleRawAction, arity: variadic, call: func(_ *coercer, args []string) string {
		fn(args)
		return ""
	}}
}

// RawFunc adapts a function that receives the argument array and returns a string.
func RawFunc(fn func(args []string) string) Adapter {
	return Adapter{style: StyleRawFunc, arity: variadic, call: func(_ *coercer, args []string) string {
		return fn(args)
	}}
}

// Action0 adapts a function with no parameters and no result.
func Action0(fn func()) Adapter {
	return Adapter{style: StyleNullaryAction, arity: 0, call: func(*coercer, []string) string {
		fn()
		return ""
	}}
}

// Func0 adapts a function with no parameters returning a string.
func Func0(fn func() string) Adapter {
	return Adapter{style: StyleNullaryFunc, arity: 0, call: func(*coercer, []string) string {
		return fn()
	}}
}

// Action1 adapts a one-parameter function with no result.
func Action1[A any](fn func(A)) Adapter {
	return Adapter{style: StyleTypedAction, arity: 1, call: func(c *coercer, args []string) string {
		fn(coerce[A](c, 0, args[0]))
		return ""
	}}
}

// Action2 adapts a two-parameter function with no result.
func Action2[A, B any](fn func(A, B)) Adapter {
	return Adapter{style: StyleTypedAction, arity: 2, call: func(c *coercer, args []string) string {
		fn(coerce[A](c, 0, args[0]), coerce[B](c, 1, args[1]))
		return ""
	}}
}

// Action3 adapts a three-parameter function with no result.
func Action3[A, B, C any](fn func(A, B, C)) Adapter {
	return Adapter{style: StyleTypedAction, arity: 3, call: func(c *coercer, args []string) string {
		fn(coerce[A](c, 0, args[0]), coerce[B](c, 1, args[1]), coerce[C](c, 2, args[2]))
		return ""
	}}
}

// Func1 adapts a one-parameter function returning a string.
func Func1[A any](fn func(A) string) Adapter {
	return Adapter{style: StyleTypedFunc, arity: 1, call: func(c *coercer, args []string) string {
		return fn(coerce[A](c, 0, args[0]))
	}}
}

// Func2 adapts a two-parameter function returning a string.
func Func2[A, B any](fn func(A, B) string) Adapter {
	return Adapter{style: StyleTypedFunc, arity: 2, call: func(c *coercer, args []string) string {
		return fn(coerce[A](c, 0, args[0]), coerce[B](c, 1, args[1]))
	}}
}

// Func3 adapts a three-parameter function returning a string.
func Func3[A, B, C any](fn func(A, B, C) string) Adapter {
	return Adapter{style: StyleTypedFunc, arity: 3, call: func(c *coercer, args []string) string {
		return fn(coerce[A](c, 0, args[0]), coerce[B](c, 1, args[1]), coerce[C](c, 2, args[2]))
	}}
}
