package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionLock guards one session's indexing pipeline: a second Process call
// for the same session must fail fast while the first still runs.
type SessionLock interface {
	// Acquire returns false if the session is already locked.
	Acquire(ctx context.Context, sessionId uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionId uuid.UUID) error
}
