package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id          uuid.UUID
	OwnerId     uuid.UUID
	Status      string
	ErrorDetail *string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type SessionFile struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	Filename   string
	State      string
	FailReason *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
