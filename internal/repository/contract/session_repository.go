package contract

import (
	"context"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type SessionFileRepository interface {
	Create(ctx context.Context, file *entity.SessionFile) error
	Update(ctx context.Context, file *entity.SessionFile) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionFile, error)
}
