package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_AcquireAndRelease(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "A1234BC", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "A1234BC", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))

	release, err = locker.Acquire(ctx, "A1234BC", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "A1234BC", time.Minute)
	require.NoError(t, err)
	defer releaseA(ctx)

	releaseB, err := locker.Acquire(ctx, "B9876XY", time.Minute)
	require.NoError(t, err)
	defer releaseB(ctx)
}

func TestMemoryLocker_ExpiredLeaseCanBeRetaken(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	_, err := locker.Acquire(ctx, "A1234BC", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	release, err := locker.Acquire(ctx, "A1234BC", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
