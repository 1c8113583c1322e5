package domain

import (
	"context"
	"fmt"
	"sync"
)

// ChoiceSlot is a single-assignment result for a presented Choice.
// The presenter must call Lock exactly once; the driver blocks in Wait.
type ChoiceSlot struct {
	mu     sync.Mutex
	count  int
	index  int
	locked bool
	done   chan struct{}
}

// NewChoiceSlot creates a slot accepting indices in [0, count).
func NewChoiceSlot(count int) *ChoiceSlot {
	return &ChoiceSlot{
		count: count,
		done:  make(chan struct{}),
	}
}

// Len returns the number of options the slot accepts.
func (s *ChoiceSlot) Len() int {
	return s.count
}

// Lock records the selected index. Out-of-range indices are rejected without
// consuming the slot; a second successful Lock is a contract violation.
func (s *ChoiceSlot) Lock(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return ErrChoiceLocked
	}
	if index < 0 || index >= s.count {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrChoiceOutOfRange, index, s.count)
	}
	s.index = index
	s.locked = true
	close(s.done)
	return nil
}

// Locked reports whether a selection was recorded.
func (s *ChoiceSlot) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Wait blocks until Lock succeeds or ctx is done.
func (s *ChoiceSlot) Wait(ctx context.Context) (int, error) {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.index, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
