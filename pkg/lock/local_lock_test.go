package lock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockExclusive(t *testing.T) {
	l := NewLocalLock()
	sessionId := uuid.New()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different session is unaffected.
	ok, err = l.Acquire(ctx, uuid.New(), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockReleaseAllowsReacquire(t *testing.T) {
	l := NewLocalLock()
	sessionId := uuid.New()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, sessionId))

	ok, err = l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockTTLExpires(t *testing.T) {
	l := NewLocalLock()
	now := time.Now()
	l.clock = func() time.Time { return now }

	sessionId := uuid.New()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Holder crashed; past the TTL the lock must be reclaimable.
	now = now.Add(2 * time.Minute)
	ok, err = l.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
