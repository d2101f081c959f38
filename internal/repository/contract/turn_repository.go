package contract

import (
	"context"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TurnRepository interface {
	// Create assigns the next per-session Seq before inserting.
	Create(ctx context.Context, turn *entity.Turn) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type CitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.TurnCitation) error
	DeleteByTurnIds(ctx context.Context, turnIds []uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TurnCitation, error)
}
