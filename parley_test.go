package parley_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/variables"
)

// autopilot answers every prompt: continue immediately and pick the option at
// index pick for every choice.
func autopilot(eng *parley.Engine, pick int, lines *[]string) {
	var mu sync.Mutex
	eng.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(_ context.Context, e *domain.LineEvent) error {
			mu.Lock()
			*lines = append(*lines, e.Speaker+": "+e.Text)
			mu.Unlock()
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			eng.Continue()
			return nil
		},
		OnChoicesDisplayed: func(_ context.Context, e *domain.ChoicesEvent) error {
			return e.Slot.Lock(pick)
		},
	})
}

func gate() *domain.Chain {
	return dsl.New("gate").
		Say("guard", "Halt!").
		Choice().
		Option("A friend.", "friend").
		Option("Nobody.", "rude").
		Done().
		Label("friend").
		Call("set mood calm").
		JumpCall("if_equals mood calm calm").
		Exit(9).
		Label("calm").
		Say("guard", "Pass.").
		Exit(0).
		Label("rude").
		Call("add insults 1").
		Exit(1).
		Build()
}

func TestEngine_ChoosesBranch(t *testing.T) {
	tests := []struct {
		name  string
		pick  int
		code  int
		lines []string
	}{
		{"friend", 0, 0, []string{"Gate Guard: Halt!", "Gate Guard: Pass."}},
		{"rude", 1, 1, []string{"Gate Guard: Halt!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := parley.New(parley.WithSpeakers(memory.NewDirectory(
				domain.Speaker{Key: "guard", Name: "Gate Guard"},
			)))
			var lines []string
			autopilot(eng, tt.pick, &lines)

			code, err := eng.Run(context.Background(), gate())
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.lines, lines)
		})
	}
}

func TestEngine_BuiltinsShareVariables(t *testing.T) {
	eng := parley.New()
	var lines []string
	autopilot(eng, 1, &lines)

	_, err := eng.Run(context.Background(), gate())
	require.NoError(t, err)
	assert.Equal(t, 1, variables.Get(eng.Variables(), "insults", 0))
}

func TestEngine_RunChain(t *testing.T) {
	eng := parley.New(parley.WithLoader(memory.NewLoader(
		dsl.New("hello").Say("npc", "Hi").Exit(5).Build(),
	)))
	var lines []string
	autopilot(eng, 0, &lines)

	code, err := eng.RunChain(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, code)

	_, err = eng.RunChain(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)

	names, err := eng.Chains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, names)
}

func TestEngine_NoLoader(t *testing.T) {
	_, err := parley.New().RunChain(context.Background(), "x")
	assert.ErrorIs(t, err, parley.ErrNoLoader)
	_, err = parley.New().Chains(context.Background())
	assert.ErrorIs(t, err, parley.ErrNoLoader)
}

func TestEngine_WaitBuiltinQueuesDelay(t *testing.T) {
	var slept []time.Duration
	eng := parley.New(parley.WithSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))

	_, err := eng.Run(context.Background(), dsl.New("c").Call("wait 0.25").Exit(0).Build())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, slept)
}

type quest struct {
	done bool
}

func TestEngine_ProvidersAndResolver(t *testing.T) {
	q := &quest{}
	var observed []string
	eng := parley.New(
		parley.WithoutBuiltins(),
		parley.WithResolver(memory.NewSingletons(q)),
		parley.WithInvokeObserver(func(name string, _ registry.Outcome, _ time.Duration) {
			observed = append(observed, name)
		}),
		parley.WithProviders(registry.ProviderFunc(func() []registry.Entry {
			return []registry.Entry{
				registry.Bound("finish_quest", func(q *quest) registry.Adapter {
					return registry.Action0(func() { q.done = true })
				}),
			}
		})),
	)

	_, err := eng.Run(context.Background(), dsl.New("c").Call("finish_quest").Call("set a b").Build())
	require.NoError(t, err)
	assert.True(t, q.done)
	assert.Equal(t, []string{"finish_quest", "set"}, observed)
	assert.False(t, eng.Functions().Has("set"))
}

func TestEngine_Reset(t *testing.T) {
	eng := parley.New()
	require.NoError(t, eng.Functions().Register("custom", func([]string) string { return "" }))
	eng.Variables().SetValue("x", 1)
	eng.Variables().Push()

	require.NoError(t, eng.Reset())
	assert.False(t, eng.Functions().Has("custom"))
	assert.True(t, eng.Functions().Has("set"), "builtins come back on next use")
	assert.Equal(t, 1, eng.Variables().Depth())
	_, ok := eng.Variables().Lookup("x")
	assert.False(t, ok)
}

func TestEngine_ResetWhileRunning(t *testing.T) {
	eng := parley.New()
	shown := make(chan struct{})
	eng.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(context.Context, *domain.LineEvent) error {
			close(shown)
			return nil
		},
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = eng.Run(context.Background(), dsl.New("c").Say("a", "hold").Build())
	}()
	<-shown
	assert.ErrorIs(t, eng.Reset(), domain.ErrAlreadyRunning)
	require.Eventually(t, eng.Continue, time.Second, time.Millisecond)
	<-done
}
