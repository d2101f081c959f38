package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLock implements SessionLock with SETNX so the guard holds across
// multiple backend instances. The TTL bounds the damage of a crashed holder.
type RedisLock struct {
	client *redis.Client
	prefix string
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{
		client: client,
		prefix: "session:process:",
	}
}

func (l *RedisLock) Acquire(ctx context.Context, sessionId uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+sessionId.String(), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire session lock: %w", err)
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, sessionId uuid.UUID) error {
	if err := l.client.Del(ctx, l.prefix+sessionId.String()).Err(); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
