package runtime

import (
	"context"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// reveal fires LineDisplayed under a cancellable context that acts as the
// skip token for the duration of the reveal.
func (e *Engine) reveal(ctx context.Context, ev *domain.LineEvent) error {
	revealCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.skip = cancel
	e.mu.Unlock()

	e.hub.emitLine(revealCtx, ev)

	e.mu.Lock()
	e.skip = nil
	e.mu.Unlock()

	// A skipped reveal is not a run failure; only the parent context counts.
	return ctx.Err()
}

// SkipCurrentReveal fast-forwards the line being revealed. It reports false
// when no reveal is in flight.
func (e *Engine) SkipCurrentReveal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.skip == nil {
		return false
	}
	e.skip()
	return true
}

func (e *Engine) waitForContinue(ctx context.Context) error {
	e.mu.Lock()
	if e.continued != nil {
		e.mu.Unlock()
		return domain.ErrWaitPending
	}
	ch := make(chan struct{})
	e.continued = ch
	e.mu.Unlock()

	e.hub.emitContinueRequested(ctx)

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		e.mu.Lock()
		if e.continued == ch {
			e.continued = nil
		}
		e.mu.Unlock()
		return ctx.Err()
	}
}

// ContinueRun resolves the pending continue wait. It reports false when the
// engine is not waiting for input.
func (e *Engine) ContinueRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.continued == nil {
		return false
	}
	close(e.continued)
	e.continued = nil
	return true
}

func (e *Engine) waitForChoice(ctx context.Context, ev *domain.ChoicesEvent) (int, error) {
	if e.hub.count(func(h domain.LifecycleHooks) bool { return h.OnChoicesDisplayed != nil }) == 0 {
		return 0, domain.ErrNoChoicePresenter
	}

	e.mu.Lock()
	if e.choice != nil {
		e.mu.Unlock()
		return 0, domain.ErrWaitPending
	}
	slot := domain.NewChoiceSlot(len(ev.Options))
	e.choice = slot
	e.mu.Unlock()

	ev.Slot = slot
	e.hub.emitChoices(ctx, ev)
	selected, err := slot.Wait(ctx)

	e.mu.Lock()
	e.choice = nil
	e.mu.Unlock()

	if err != nil {
		return 0, err
	}
	e.hub.emitChoicesCleared(ctx)
	return selected, nil
}

// Choose locks the pending choice with index. It fails with
// domain.ErrNothingPending when no choice is presented.
func (e *Engine) Choose(index int) error {
	e.mu.Lock()
	slot := e.choice
	e.mu.Unlock()
	if slot == nil {
		return domain.ErrNothingPending
	}
	return slot.Lock(index)
}

// QueueDelay appends a forced wait run before the next node is displayed.
func (e *Engine) QueueDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delays = append(e.delays, d)
}

func (e *Engine) drainDelays(ctx context.Context) error {
	for {
		e.mu.Lock()
		if len(e.delays) == 0 {
			e.mu.Unlock()
			return nil
		}
		d := e.delays[0]
		e.delays = e.delays[1:]
		e.mu.Unlock()

		if err := e.sleep(ctx, d); err != nil {
			return err
		}
	}
}
