package contract

import (
	"context"

	"docrag-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredPassage pairs a passage with its cosine similarity to a query vector.
type ScoredPassage struct {
	Passage    *entity.Passage
	Similarity float64
}

type PassageRepository interface {
	CreateBulk(ctx context.Context, passages []*entity.Passage) error
	DeleteBySource(ctx context.Context, sessionId uuid.UUID, source string) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	CountBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error)
	// SearchSimilarWithScore returns the top passages of one session ordered
	// by similarity, filtered to similarity >= threshold.
	SearchSimilarWithScore(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*ScoredPassage, error)
}
