package contract

import (
	"context"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InsightRepository interface {
	Create(ctx context.Context, insight *entity.Insight) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Insight, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Insight, error)
}
