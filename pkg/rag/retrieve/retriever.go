package retrieve

import (
	"context"

	"github.com/google/uuid"
)

// Passage is a retrieved chunk with its provenance. Page is zero-based and
// nil for sources without page structure.
type Passage struct {
	Source  string
	Page    *int
	Content string
	Score   float64
}

// Retriever searches a session's indexed passages. Purge removes the whole
// namespace when the session is deleted.
type Retriever interface {
	Search(ctx context.Context, sessionId uuid.UUID, query string, topK int) ([]Passage, error)
	Purge(ctx context.Context, sessionId uuid.UUID) error
}
