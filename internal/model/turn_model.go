package model

import (
	"time"

	"github.com/google/uuid"
)

type Turn struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_turns_session_seq,priority:1"`
	Role       string    `gorm:"type:text;not null"`
	Content    string    `gorm:"type:text;not null"`
	Seq        int       `gorm:"not null;uniqueIndex:idx_turns_session_seq,priority:2"`
	Incomplete bool      `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Turn) TableName() string {
	return "turns"
}

type TurnCitation struct {
	Id      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Source  string    `gorm:"type:text;not null"`
	Page    *int
	Snippet string `gorm:"type:text"`
	Rank    int    `gorm:"default:0"`
}

func (TurnCitation) TableName() string {
	return "turn_citations"
}
