package runtime_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
)

// autoContinue subscribes hooks that answer every continue request at once and
// count reveals and waits.
func autoContinue(e *runtime.Engine, reveals, waits *atomic.Int32) {
	e.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(context.Context, *domain.LineEvent) error {
			reveals.Add(1)
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			waits.Add(1)
			e.ContinueRun()
			return nil
		},
	})
}

func TestEngine_LineThenExit(t *testing.T) {
	e := runtime.NewEngine()
	var reveals, waits atomic.Int32
	autoContinue(e, &reveals, &waits)

	chain := domain.NewChain("greet",
		&domain.SpokenLine{Speaker: "npc", SpeakerKnown: true, Lines: []string{"Hi"}},
		&domain.Exit{Code: 5},
	)

	code, err := e.Run(context.Background(), chain)
	require.NoError(t, err)
	assert.Equal(t, 5, code)
	assert.Equal(t, int32(1), reveals.Load())
	assert.Equal(t, int32(1), waits.Load())
	assert.False(t, e.Running())
	assert.Empty(t, e.CurrentSpeaker())
}

func TestEngine_MultiLineWaitsBetweenLines(t *testing.T) {
	e := runtime.NewEngine()
	var reveals, waits atomic.Int32
	autoContinue(e, &reveals, &waits)

	chain := domain.NewChain("c",
		&domain.SpokenLine{Speaker: "npc", Lines: []string{"one", "two", "three"}},
	)
	code, err := e.Run(context.Background(), chain)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, int32(3), reveals.Load())
	// two between lines plus the driver's own pause after the node
	assert.Equal(t, int32(3), waits.Load())
}

func TestEngine_EmptyChain(t *testing.T) {
	var events []domain.EventType
	var mu sync.Mutex
	record := func(ev domain.EventType) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}
	e := runtime.NewEngine(runtime.WithHooks(domain.LifecycleHooks{
		OnStarted: func(context.Context, *domain.StartedEvent) error { record(domain.EventStarted); return nil },
		OnEnded: func(_ context.Context, ev *domain.EndedEvent) error {
			record(domain.EventEnded)
			assert.Equal(t, 0, ev.ExitCode)
			return nil
		},
	}))

	code, err := e.Run(context.Background(), domain.NewChain("empty"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []domain.EventType{domain.EventStarted, domain.EventEnded}, events)
}

func TestEngine_NilChain(t *testing.T) {
	_, err := runtime.NewEngine().Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestEngine_RejectsSecondRun(t *testing.T) {
	e := runtime.NewEngine()
	revealed := make(chan struct{})
	e.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(context.Context, *domain.LineEvent) error {
			close(revealed)
			return nil
		},
	})

	chain := domain.NewChain("c", &domain.SpokenLine{Speaker: "a", Lines: []string{"wait here"}})
	done := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background(), chain)
		done <- err
	}()

	<-revealed
	assert.True(t, e.Running())
	_, err := e.Run(context.Background(), chain)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)

	require.Eventually(t, e.ContinueRun, time.Second, time.Millisecond)
	require.NoError(t, <-done)
	assert.False(t, e.Running())
}

func TestEngine_LabelsAndJumps(t *testing.T) {
	e := runtime.NewEngine()
	var lines []string
	e.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(_ context.Context, ev *domain.LineEvent) error {
			lines = append(lines, ev.Text)
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			e.ContinueRun()
			return nil
		},
	})

	chain := domain.NewChain("c",
		&domain.Jump{Label: "END"},
		&domain.SpokenLine{Speaker: "a", Lines: []string{"skipped"}},
		&domain.Label{Name: "end"},
		&domain.SpokenLine{Speaker: "a", Lines: []string{"shown"}},
		&domain.Jump{Label: "nowhere"},
		&domain.Exit{Code: 2},
	)

	code, err := e.Run(context.Background(), chain)
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, []string{"shown"}, lines)
}

type stubInvoker map[string]string

func (s stubInvoker) Invoke(name string, _ []string) string { return s[name] }

func TestEngine_MethodCalls(t *testing.T) {
	tests := []struct {
		name string
		node domain.Node
		want int
	}{
		{"call result names label", &domain.MethodCall{Method: "route"}, 7},
		{"call result unused", &domain.MethodCall{Method: "noise"}, 1},
		{"call empty result", &domain.MethodCall{Method: "missing"}, 1},
		{"jump call resolves", &domain.JumpMethodCall{Method: "route"}, 7},
		{"jump call falls through", &domain.JumpMethodCall{Method: "noise"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := runtime.NewEngine(runtime.WithInvoker(stubInvoker{"route": "Secret", "noise": "whatever"}))
			chain := domain.NewChain("c",
				tt.node,
				&domain.Exit{Code: 1},
				&domain.Label{Name: "secret"},
				&domain.Exit{Code: 7},
			)
			code, err := e.Run(context.Background(), chain)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestEngine_SkipCancelsOnlyTheReveal(t *testing.T) {
	e := runtime.NewEngine()
	assert.False(t, e.SkipCurrentReveal(), "nothing to skip while idle")

	var skipped atomic.Bool
	e.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(ctx context.Context, _ *domain.LineEvent) error {
			<-ctx.Done()
			skipped.Store(true)
			return ctx.Err()
		},
		OnContinueRequested: func(context.Context) error {
			e.ContinueRun()
			return nil
		},
	})

	done := make(chan int, 1)
	go func() {
		code, err := e.Run(context.Background(), domain.NewChain("c",
			&domain.SpokenLine{Speaker: "a", Lines: []string{"slow text"}},
			&domain.Exit{Code: 3},
		))
		assert.NoError(t, err)
		done <- code
	}()

	require.Eventually(t, e.SkipCurrentReveal, time.Second, time.Millisecond)
	assert.Equal(t, 3, <-done)
	assert.True(t, skipped.Load())
}

func TestEngine_ContinueWithoutWait(t *testing.T) {
	assert.False(t, runtime.NewEngine().ContinueRun())
}

func TestEngine_ChoiceWaitsForLock(t *testing.T) {
	e := runtime.NewEngine()
	var cleared atomic.Int32
	presented := make(chan *domain.ChoicesEvent, 1)
	e.Subscribe(domain.LifecycleHooks{
		OnChoicesDisplayed: func(_ context.Context, ev *domain.ChoicesEvent) error {
			presented <- ev
			return nil
		},
		OnChoicesCleared: func(context.Context) error {
			cleared.Add(1)
			return nil
		},
	})

	chain := domain.NewChain("c",
		&domain.Choice{Options: []domain.Option{
			{Text: "left", Label: "l"},
			{Text: "right", Label: "r"},
		}},
		&domain.Label{Name: "l"},
		&domain.Exit{Code: 10},
		&domain.Label{Name: "r"},
		&domain.Exit{Code: 20},
	)

	done := make(chan int, 1)
	go func() {
		code, err := e.Run(context.Background(), chain)
		assert.NoError(t, err)
		done <- code
	}()

	ev := <-presented
	assert.Equal(t, []string{"left", "right"}, ev.Options)
	assert.True(t, e.Snapshot().AwaitingChoice)
	assert.Equal(t, 2, e.Snapshot().Choices)

	select {
	case <-done:
		t.Fatal("run finished before the choice was locked")
	case <-time.After(20 * time.Millisecond):
	}

	require.ErrorIs(t, e.Choose(5), domain.ErrChoiceOutOfRange)
	require.NoError(t, e.Choose(1))
	assert.ErrorIs(t, ev.Slot.Lock(0), domain.ErrChoiceLocked)

	assert.Equal(t, 20, <-done)
	assert.Equal(t, int32(1), cleared.Load())
	assert.ErrorIs(t, e.Choose(0), domain.ErrNothingPending)
}

func TestEngine_ChoiceWithoutPresenter(t *testing.T) {
	e := runtime.NewEngine()
	_, err := e.Run(context.Background(), domain.NewChain("c",
		&domain.Choice{Options: []domain.Option{{Text: "only", Label: "x"}}},
	))
	assert.ErrorIs(t, err, domain.ErrNoChoicePresenter)
	assert.False(t, e.Running())
}

func TestEngine_ForcedDelays(t *testing.T) {
	var slept []time.Duration
	var e *runtime.Engine
	e = runtime.NewEngine(
		runtime.WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
		runtime.WithInvoker(invokerFunc(func(name string, _ []string) string {
			e.QueueDelay(time.Second)
			e.QueueDelay(2 * time.Second)
			return ""
		})),
	)

	code, err := e.Run(context.Background(), domain.NewChain("c",
		&domain.MethodCall{Method: "wait"},
		&domain.Exit{Code: 4},
	))
	require.NoError(t, err)
	assert.Equal(t, 4, code)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestEngine_DelaysDrainAtEnd(t *testing.T) {
	var slept int
	var e *runtime.Engine
	e = runtime.NewEngine(
		runtime.WithSleep(func(context.Context, time.Duration) error {
			slept++
			return nil
		}),
		runtime.WithInvoker(invokerFunc(func(string, []string) string {
			e.QueueDelay(time.Millisecond)
			return ""
		})),
	)
	_, err := e.Run(context.Background(), domain.NewChain("c", &domain.MethodCall{Method: "wait"}))
	require.NoError(t, err)
	assert.Equal(t, 1, slept)
}

func TestEngine_CancelEndsRun(t *testing.T) {
	e := runtime.NewEngine()
	var ended atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	e.Subscribe(domain.LifecycleHooks{
		OnContinueRequested: func(context.Context) error {
			cancel()
			return nil
		},
		OnEnded: func(ctx context.Context, _ *domain.EndedEvent) error {
			assert.NoError(t, ctx.Err(), "ended is delivered with a live context")
			ended.Store(true)
			return nil
		},
	})

	_, err := e.Run(ctx, domain.NewChain("c",
		&domain.SpokenLine{Speaker: "a", Lines: []string{"hello"}},
		&domain.Exit{Code: 1},
	))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, ended.Load())
	assert.False(t, e.Running())
}

func TestEngine_SubscriberFailuresDoNotStopRun(t *testing.T) {
	e := runtime.NewEngine()
	unsubscribe := e.Subscribe(domain.LifecycleHooks{
		OnStarted: func(context.Context, *domain.StartedEvent) error { panic("broken subscriber") },
	})
	e.Subscribe(domain.LifecycleHooks{
		OnEnded: func(context.Context, *domain.EndedEvent) error { return assert.AnError },
	})

	code, err := e.Run(context.Background(), domain.NewChain("c", &domain.Exit{Code: 9}))
	require.NoError(t, err)
	assert.Equal(t, 9, code)

	unsubscribe()
	unsubscribe()
}

func TestEngine_SpeakerResolution(t *testing.T) {
	dir := speakerDir{"npc": {Key: "npc", Name: "Old Man", Voice: "low"}}
	e := runtime.NewEngine(runtime.WithSpeakers(dir))
	var got *domain.LineEvent
	e.Subscribe(domain.LifecycleHooks{
		OnLineDisplayed: func(_ context.Context, ev *domain.LineEvent) error {
			got = ev
			assert.Equal(t, "npc", e.CurrentSpeaker())
			assert.True(t, e.Snapshot().Revealing)
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			e.ContinueRun()
			return nil
		},
	})

	_, err := e.Run(context.Background(), domain.NewChain("c",
		&domain.SpokenLine{Speaker: "npc", SpeakerKnown: true, Lines: []string{"hm"}},
	))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Old Man", got.Speaker)
	assert.Equal(t, "low", got.Voice)
	assert.True(t, got.SpeakerKnown)
}

type speakerDir map[string]domain.Speaker

func (d speakerDir) Lookup(key string) (domain.Speaker, bool) {
	s, ok := d[key]
	return s, ok
}

type invokerFunc func(name string, args []string) string

func (f invokerFunc) Invoke(name string, args []string) string { return f(name, args) }
