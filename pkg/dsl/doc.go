/*
Package dsl builds dialogue chains in Go code.

It is the programmatic counterpart of compiled chain documents, useful for tests
and for chains generated at runtime.

	chain := dsl.New("gate").
		Say("guard", "Halt!", "Who goes there?").
		Choice().
		Option("A friend.", "friend").
		Option("None of your business.", "rude").
		Done().
		Label("friend").
		Call(`set guard_mood calm`).
		Exit(0).
		Label("rude").
		Exit(1).
		Build()
*/
package dsl
