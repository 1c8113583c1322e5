package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

type subscription struct {
	hooks domain.LifecycleHooks
}

// hub fans lifecycle events out to every subscriber concurrently and returns
// once all of them are done.
type hub struct {
	mu     sync.RWMutex
	subs   []*subscription
	logger *slog.Logger
}

func newHub() *hub {
	return &hub{logger: logging.NewNop()}
}

func (h *hub) add(hooks domain.LifecycleHooks) func() {
	s := &subscription{hooks: hooks}
	h.mu.Lock()
	h.subs = append(h.subs, s)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, cur := range h.subs {
				if cur == s {
					h.subs = append(h.subs[:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (h *hub) snapshot() []domain.LifecycleHooks {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.LifecycleHooks, len(h.subs))
	for i, s := range h.subs {
		out[i] = s.hooks
	}
	return out
}

func (h *hub) count(match func(domain.LifecycleHooks) bool) int {
	n := 0
	for _, hooks := range h.snapshot() {
		if match(hooks) {
			n++
		}
	}
	return n
}

// fanOut runs call for every subscriber that has a callback for event.
func (h *hub) fanOut(ctx context.Context, event domain.EventType, pick func(domain.LifecycleHooks) func(context.Context) error) {
	var g errgroup.Group
	for _, hooks := range h.snapshot() {
		fn := pick(hooks)
		if fn == nil {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("subscriber panicked: %v", r)
				}
				if err != nil && ctx.Err() == nil {
					h.logger.Error("lifecycle subscriber failed", "event", event, "err", err)
				}
			}()
			return fn(ctx)
		})
	}
	// Errors are logged per subscriber above; none of them stops the run.
	_ = g.Wait()
}

func (h *hub) emitStarted(ctx context.Context, ev *domain.StartedEvent) {
	h.fanOut(ctx, domain.EventStarted, func(s domain.LifecycleHooks) func(context.Context) error {
		if s.OnStarted == nil {
			return nil
		}
		return func(ctx context.Context) error { return s.OnStarted(ctx, ev) }
	})
}

func (h *hub) emitEnded(ctx context.Context, ev *domain.EndedEvent) {
	h.fanOut(ctx, domain.EventEnded, func(s domain.LifecycleHooks) func(context.Context) error {
		if s.OnEnded == nil {
			return nil
		}
		return func(ctx context.Context) error { return s.OnEnded(ctx, ev) }
	})
}

func (h *hub) emitLine(ctx context.Context, ev *domain.LineEvent) {
	h.fanOut(ctx, domain.EventLineDisplayed, func(s domain.LifecycleHooks) func(context.Context) error {
		if s.OnLineDisplayed == nil {
			return nil
		}
		return func(ctx context.Context) error { return s.OnLineDisplayed(ctx, ev) }
	})
}

func (h *hub) emitChoices(ctx context.Context, ev *domain.ChoicesEvent) {
	h.fanOut(ctx, domain.EventChoicesDisplayed, func(s domain.LifecycleHooks) func(context.Context) error {
		if s.OnChoicesDisplayed == nil {
			return nil
		}
		return func(ctx context.Context) error { return s.OnChoicesDisplayed(ctx, ev) }
	})
}

func (h *hub) emitChoicesCleared(ctx context.Context) {
	h.fanOut(ctx, domain.EventChoicesCleared, func(s domain.LifecycleHooks) func(context.Context) error {
		return s.OnChoicesCleared
	})
}

func (h *hub) emitContinueRequested(ctx context.Context) {
	h.fanOut(ctx, domain.EventContinueRequested, func(s domain.LifecycleHooks) func(context.Context) error {
		return s.OnContinueRequested
	})
}
