package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// UnknownSpeaker is printed instead of the name of a speaker not yet introduced.
const UnknownSpeaker = "???"

// Dialogue is the part of the engine the runner drives.
type Dialogue interface {
	Run(ctx context.Context, chain *domain.Chain) (int, error)
	Subscribe(hooks domain.LifecycleHooks) func()
	Continue() bool
	Skip() bool
}

// ContentRenderer transforms line text before it is revealed.
type ContentRenderer func(string) (string, error)

// SpeakerStyle decorates a speaker name.
type SpeakerStyle func(name string, known bool) string

// Runner connects a Dialogue to a reader and a writer.
type Runner struct {
	input    io.Reader
	output   io.Writer
	speed    float64
	renderer ContentRenderer
	style    SpeakerStyle
	logger   *slog.Logger

	outMu     sync.Mutex
	lines     chan string
	startOnce sync.Once
}

// Option configures a Runner.
type Option func(*Runner)

// WithInput sets where player input is read from. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(rn *Runner) {
		rn.input = r
	}
}

// WithOutput sets where the dialogue is printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.output = w
	}
}

// WithSpeed reveals lines at charsPerSecond. Zero prints lines at once.
func WithSpeed(charsPerSecond float64) Option {
	return func(rn *Runner) {
		rn.speed = charsPerSecond
	}
}

// WithRenderer configures the line renderer (e.g. markdown to ANSI).
func WithRenderer(renderer ContentRenderer) Option {
	return func(rn *Runner) {
		rn.renderer = renderer
	}
}

// WithSpeakerStyle configures how speaker names are printed.
func WithSpeakerStyle(style SpeakerStyle) Option {
	return func(rn *Runner) {
		rn.style = style
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rn *Runner) {
		rn.logger = logging.OrNop(logger)
	}
}

// New creates a runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		input:  os.Stdin,
		output: os.Stdout,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays chain on d until it exits. When the player quits or input ends
// the run is cancelled and io.EOF is returned.
func (r *Runner) Run(ctx context.Context, d Dialogue, chain *domain.Chain) (int, error) {
	r.startPump()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var quitted atomic.Bool
	stop := func() {
		quitted.Store(true)
		cancel()
	}

	unsubscribe := d.Subscribe(r.hooks(d, stop))
	defer unsubscribe()

	code, err := d.Run(runCtx, chain)
	if quitted.Load() && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return code, io.EOF
	}
	return code, err
}

func (r *Runner) hooks(d Dialogue, stop func()) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLineDisplayed: func(ctx context.Context, e *domain.LineEvent) error {
			return r.reveal(ctx, d, e)
		},
		OnContinueRequested: func(ctx context.Context) error {
			line, ok := r.read(ctx)
			if !ok || isQuit(line) {
				stop()
				return nil
			}
			d.Continue()
			return nil
		},
		OnChoicesDisplayed: func(ctx context.Context, e *domain.ChoicesEvent) error {
			return r.choose(ctx, e, stop)
		},
		OnEnded: func(_ context.Context, e *domain.EndedEvent) error {
			r.printf("[exit %d]\n", e.ExitCode)
			return nil
		},
	}
}

func (r *Runner) reveal(ctx context.Context, d Dialogue, e *domain.LineEvent) error {
	text := e.Text
	if r.renderer != nil {
		if rendered, err := r.renderer(text); err == nil {
			text = strings.TrimSpace(rendered)
		} else {
			r.logger.Warn("line render failed, printing raw text", "err", err)
		}
	}

	r.printf("%s: ", r.speakerName(e))
	if r.speed <= 0 {
		r.printf("%s\n", text)
		return nil
	}

	delay := time.Duration(float64(time.Second) / r.speed)
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	// A closed input channel only stops watching for Enter.
	lines := r.lines
	runes := []rune(text)
	for i := 0; i < len(runes); {
		select {
		case <-ctx.Done():
			r.printf("%s\n", string(runes[i:]))
			return nil
		case _, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			// Enter while revealing fast-forwards the line.
			d.Skip()
			r.printf("%s\n", string(runes[i:]))
			return nil
		case <-ticker.C:
			r.printf("%c", runes[i])
			i++
		}
	}
	r.printf("\n")
	return nil
}

func (r *Runner) choose(ctx context.Context, e *domain.ChoicesEvent, stop func()) error {
	for i, opt := range e.Options {
		r.printf("  %d) %s\n", i+1, opt)
	}
	for {
		line, ok := r.read(ctx)
		if !ok || isQuit(line) {
			stop()
			return nil
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			if err = e.Slot.Lock(n - 1); err == nil {
				return nil
			}
			if errors.Is(err, domain.ErrChoiceLocked) {
				return nil
			}
		}
		r.printf("choose 1-%d\n", len(e.Options))
	}
}

func (r *Runner) speakerName(e *domain.LineEvent) string {
	name := e.Speaker
	if !e.SpeakerKnown {
		name = UnknownSpeaker
	}
	if r.style != nil {
		return r.style(name, e.SpeakerKnown)
	}
	return name
}

func (r *Runner) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.output, format, args...)
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
