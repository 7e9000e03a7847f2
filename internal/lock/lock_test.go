package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "user:a", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "user:a", time.Minute)
	assert.ErrorIs(t, err, ErrBusy)

	// A different key is unaffected.
	releaseB, err := locker.Acquire(ctx, "user:b", time.Minute)
	require.NoError(t, err)
	releaseB()

	release()

	release2, err := locker.Acquire(ctx, "user:a", time.Minute)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "user:a", time.Minute)
	require.NoError(t, err)
	release()
	release()

	release2, err := locker.Acquire(ctx, "user:a", time.Minute)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_TTLExpiresLeakedLock(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	// Acquire and never release; the TTL must reclaim the key.
	_, err := locker.Acquire(ctx, "user:a", 20*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		release, err := locker.Acquire(ctx, "user:a", time.Minute)
		if err != nil {
			return false
		}
		release()
		return true
	}, time.Second, 10*time.Millisecond)
}
