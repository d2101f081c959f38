package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/contract"

	"github.com/google/uuid"
)

type PassageRepository struct {
	store *Store
}

func NewPassageRepository(store *Store) contract.PassageRepository {
	return &PassageRepository{store: store}
}

func (r *PassageRepository) CreateBulk(ctx context.Context, passages []*entity.Passage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range passages {
		if p.Id == uuid.Nil {
			p.Id = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		r.store.passages[p.Id] = clonePassage(p)
	}
	return nil
}

func (r *PassageRepository) DeleteBySource(ctx context.Context, sessionId uuid.UUID, source string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, p := range r.store.passages {
		if p.SessionId == sessionId && p.Source == source {
			delete(r.store.passages, id)
		}
	}
	return nil
}

func (r *PassageRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, p := range r.store.passages {
		if p.SessionId == sessionId {
			delete(r.store.passages, id)
		}
	}
	return nil
}

func (r *PassageRepository) CountBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, p := range r.store.passages {
		if p.SessionId == sessionId {
			count++
		}
	}
	return count, nil
}

func (r *PassageRepository) SearchSimilarWithScore(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 5
	}

	r.store.mu.RLock()
	var scored []*contract.ScoredPassage
	for _, p := range r.store.passages {
		if p.SessionId != sessionId {
			continue
		}
		sim := cosineSimilarity(embedding, p.Embedding)
		if sim >= threshold {
			scored = append(scored, &contract.ScoredPassage{
				Passage:    clonePassage(p),
				Similarity: sim,
			})
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
