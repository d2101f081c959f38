package entity

import (
	"time"

	"github.com/google/uuid"
)

// Passage is one indexed chunk of a session's document, scoped to the
// session's namespace in the semantic index.
type Passage struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	Source     string
	Page       *int
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}
