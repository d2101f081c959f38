package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Passage struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Source     string          `gorm:"type:text;not null"`
	Page       *int            `gorm:""`
	ChunkIndex int             `gorm:"default:0"` // 0-based index for ordering
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 use 768 dimensions
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (Passage) TableName() string {
	return "session_passages"
}
