package entity

import (
	"time"

	"github.com/google/uuid"
)

type Insight struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Content   string
	CreatedAt time.Time
}
