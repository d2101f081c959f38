package unitofwork

import (
	"context"

	"docrag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	SessionFileRepository() contract.SessionFileRepository
	TurnRepository() contract.TurnRepository
	CitationRepository() contract.CitationRepository
	InsightRepository() contract.InsightRepository
	PassageRepository() contract.PassageRepository
}
