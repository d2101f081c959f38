package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerId     uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Status      string    `gorm:"type:text;not null"`
	ErrorDetail *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	ProcessedAt *time.Time
}

func (Session) TableName() string {
	return "sessions"
}

type SessionFile struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename   string    `gorm:"type:text;not null"`
	State      string    `gorm:"type:text;not null"`
	FailReason *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  *time.Time
}

func (SessionFile) TableName() string {
	return "session_files"
}
