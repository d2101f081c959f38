package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalLock is the single-process fallback used when Redis is not
// configured. TTL expiry is honored lazily on the next Acquire.
type LocalLock struct {
	mu    sync.Mutex
	held  map[uuid.UUID]time.Time
	clock func() time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{
		held:  make(map[uuid.UUID]time.Time),
		clock: time.Now,
	}
}

func (l *LocalLock) Acquire(ctx context.Context, sessionId uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[sessionId]; ok && l.clock().Before(expiry) {
		return false, nil
	}
	l.held[sessionId] = l.clock().Add(ttl)
	return true, nil
}

func (l *LocalLock) Release(ctx context.Context, sessionId uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, sessionId)
	return nil
}
