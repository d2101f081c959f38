package store

import (
	"time"

	"docrag-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionCache keeps recently touched session rows in memory so the chat
// path does not hit the store for every status check. Entries are
// invalidated on every state change and expire on their own otherwise.
type SessionCache struct {
	cache *cache.Cache
}

func NewSessionCache() *SessionCache {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	return &SessionCache{
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (c *SessionCache) Save(session *entity.Session) {
	copied := *session
	c.cache.Set(session.Id.String(), &copied, cache.DefaultExpiration)
}

func (c *SessionCache) Get(sessionId uuid.UUID) (*entity.Session, bool) {
	if x, found := c.cache.Get(sessionId.String()); found {
		copied := *(x.(*entity.Session))
		return &copied, true
	}
	return nil, false
}

func (c *SessionCache) Delete(sessionId uuid.UUID) {
	c.cache.Delete(sessionId.String())
}
