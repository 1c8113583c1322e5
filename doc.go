/*
Package parley is a branching-dialogue engine.

A dialogue is a Chain: an ordered list of nodes (spoken lines, labels, jumps,
dialogue function calls, choices and exits). The engine walks one chain at a
time, pausing whenever the player has to read, continue or choose, and tells
frontends what to show through lifecycle hooks.

# Usage

	chain := dsl.New("gate").
		Say("guard", "Halt! Who goes there?").
		Choice().
		Option("A friend.", "friend").
		Option("Nobody.", "rude").
		Done().
		Label("friend").
		Call("set guard_mood calm").
		Exit(0).
		Label("rude").
		Exit(1).
		Build()

	eng := parley.New()
	eng.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(ctx context.Context, e *domain.LineEvent) error {
			fmt.Printf("%s: %s\n", e.Speaker, e.Text)
			return nil
		},
		OnContinueRequested: func(ctx context.Context) error {
			eng.Continue()
			return nil
		},
		OnChoicesDisplayed: func(ctx context.Context, e *domain.ChoicesEvent) error {
			return e.Slot.Lock(0)
		},
	})
	code, err := eng.Run(ctx, chain)

# Dialogue functions

Call nodes invoke functions from the registry by name with string arguments.
The standard library (set, get, add, wait, if_equals, pick, ...) is registered
unless WithoutBuiltins is given; applications add their own through
WithProviders or Functions().Add.

# Frontends

pkg/runner drives a dialogue from a terminal, pkg/adapters/http from a browser.
Chains come from Go code (pkg/dsl), a directory of documents
(pkg/adapters/file) or Redis (pkg/adapters/redis).
*/
package parley
