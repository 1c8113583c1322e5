package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Invoker runs a dialogue function by name. It never fails; unknown or
// broken functions yield "".
type Invoker interface {
	Invoke(name string, args []string) string
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Engine walks a Chain one node at a time. Only one run may be active.
type Engine struct {
	invoker  Invoker
	speakers ports.SpeakerDirectory
	sleep    SleepFunc
	logger   *slog.Logger

	hub *hub

	mu        sync.Mutex
	running   bool
	runID     string
	chain     *domain.Chain
	cursor    int
	speaker   string
	skip      context.CancelFunc
	continued chan struct{}
	choice    *domain.ChoiceSlot
	delays    []time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(logger)
	}
}

// WithInvoker configures the dialogue function backend used by call nodes.
func WithInvoker(invoker Invoker) Option {
	return func(e *Engine) {
		e.invoker = invoker
	}
}

// WithSpeakers configures the speaker directory used to name line speakers.
func WithSpeakers(speakers ports.SpeakerDirectory) Option {
	return func(e *Engine) {
		e.speakers = speakers
	}
}

// WithSleep replaces the function used to await forced delays.
func WithSleep(sleep SleepFunc) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithHooks subscribes hooks for the lifetime of the engine.
func WithHooks(hooks ...domain.LifecycleHooks) Option {
	return func(e *Engine) {
		for _, h := range hooks {
			e.hub.add(h)
		}
	}
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		invoker: nopInvoker{},
		sleep:   sleepContext,
		logger:  logging.NewNop(),
		hub:     newHub(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hub.logger = e.logger
	return e
}

// Subscribe adds a lifecycle subscriber and returns a function removing it.
func (e *Engine) Subscribe(hooks domain.LifecycleHooks) (unsubscribe func()) {
	return e.hub.add(hooks)
}

// Run walks chain from its first node until an Exit node or the end of the
// chain, returning the exit code. Starting a run while another is active fails
// with domain.ErrAlreadyRunning. Ended is always fired once Started was.
func (e *Engine) Run(ctx context.Context, chain *domain.Chain) (int, error) {
	if chain == nil {
		return 0, errors.New("run: nil chain")
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return 0, domain.ErrAlreadyRunning
	}
	runID := uuid.NewString()
	e.running = true
	e.runID = runID
	e.chain = chain
	e.cursor = chain.FirstIndex()
	e.speaker = ""
	e.mu.Unlock()

	defer e.reset()

	logger := e.logger.With("run", runID, "chain", chain.Name())
	logger.Debug("dialogue started", "nodes", chain.Len())

	e.hub.emitStarted(ctx, &domain.StartedEvent{RunID: runID, Chain: chain, Timestamp: time.Now()})

	exitCode, err := e.loop(ctx, logger, runID, chain)
	if err == nil {
		err = e.drainDelays(ctx)
	}

	e.setSpeaker("")
	// Ended must reach subscribers even when the caller gave up on the run.
	endCtx := context.WithoutCancel(ctx)
	e.hub.emitEnded(endCtx, &domain.EndedEvent{RunID: runID, Chain: chain, ExitCode: exitCode, Timestamp: time.Now()})

	if err != nil {
		logger.Warn("dialogue interrupted", "exit_code", exitCode, "err", err)
		return exitCode, err
	}
	logger.Debug("dialogue ended", "exit_code", exitCode)
	return exitCode, nil
}

func (e *Engine) loop(ctx context.Context, logger *slog.Logger, runID string, chain *domain.Chain) (int, error) {
	cursor := chain.FirstIndex()
	for {
		node := chain.At(cursor)
		if node == nil {
			return 0, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := e.drainDelays(ctx); err != nil {
			return 0, err
		}

		e.setCursor(cursor)
		in, err := e.display(ctx, logger, runID, chain, cursor, node)
		if err != nil {
			return 0, err
		}
		if in.PauseForInput {
			if err := e.waitForContinue(ctx); err != nil {
				return 0, err
			}
		}

		switch in.Kind {
		case domain.InstructionContinue:
			cursor++
		case domain.InstructionGoto:
			cursor = in.Target
		case domain.InstructionExit:
			return in.ExitCode, nil
		}
	}
}

func (e *Engine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.skip != nil {
		e.skip()
	}
	e.running = false
	e.runID = ""
	e.chain = nil
	e.cursor = 0
	e.speaker = ""
	e.skip = nil
	e.continued = nil
	e.choice = nil
	e.delays = nil
}

// Running reports whether a run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// CurrentSpeaker returns the key of the speaker of the line being shown, or "".
func (e *Engine) CurrentSpeaker() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaker
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := domain.Session{
		Running:          e.running,
		RunID:            e.runID,
		Cursor:           e.cursor,
		CurrentSpeaker:   e.speaker,
		Revealing:        e.skip != nil,
		AwaitingContinue: e.continued != nil,
		AwaitingChoice:   e.choice != nil,
	}
	if e.chain != nil {
		s.Chain = e.chain.Name()
	}
	if e.choice != nil {
		s.Choices = e.choice.Len()
	}
	return s
}

func (e *Engine) setCursor(i int) {
	e.mu.Lock()
	e.cursor = i
	e.mu.Unlock()
}

func (e *Engine) setSpeaker(key string) {
	e.mu.Lock()
	e.speaker = key
	e.mu.Unlock()
}

type nopInvoker struct{}

func (nopInvoker) Invoke(string, []string) string { return "" }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
