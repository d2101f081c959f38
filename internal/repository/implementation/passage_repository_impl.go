package implementation

import (
	"context"

	"docrag-be/internal/entity"
	"docrag-be/internal/mapper"
	"docrag-be/internal/model"
	"docrag-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageMapper
}

func NewPassageRepository(db *gorm.DB) contract.PassageRepository {
	return &PassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageMapper(),
	}
}

func (r *PassageRepositoryImpl) CreateBulk(ctx context.Context, passages []*entity.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	models := r.mapper.ToModels(passages)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*passages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PassageRepositoryImpl) DeleteBySource(ctx context.Context, sessionId uuid.UUID, source string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND source = ?", sessionId, source).
		Delete(&model.Passage{}).Error
}

func (r *PassageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.Passage{}).Error
}

func (r *PassageRepositoryImpl) CountBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Passage{}).
		Where("session_id = ?", sessionId).
		Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks one session's passages against a query vector.
// Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding <=> query_vector) recovers the similarity.
func (r *PassageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Passage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("session_passages").
		Select("session_passages.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("session_id = ?", sessionId).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassage{
			Passage:    r.mapper.ToEntity(&res.Passage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
