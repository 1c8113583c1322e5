package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceSlot_LockOnce(t *testing.T) {
	slot := domain.NewChoiceSlot(2)

	err := slot.Lock(5)
	assert.ErrorIs(t, err, domain.ErrChoiceOutOfRange)
	assert.False(t, slot.Locked(), "out of range lock must not consume the slot")

	require.NoError(t, slot.Lock(1))
	assert.ErrorIs(t, slot.Lock(0), domain.ErrChoiceLocked)

	idx, err := slot.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestChoiceSlot_WaitBlocksUntilLock(t *testing.T) {
	slot := domain.NewChoiceSlot(3)
	got := make(chan int, 1)

	go func() {
		idx, _ := slot.Wait(context.Background())
		got <- idx
	}()

	select {
	case <-got:
		t.Fatal("Wait returned before Lock")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, slot.Lock(2))
	select {
	case idx := <-got:
		assert.Equal(t, 2, idx)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Lock")
	}
}

func TestChoiceSlot_WaitCancelled(t *testing.T) {
	slot := domain.NewChoiceSlot(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slot.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
