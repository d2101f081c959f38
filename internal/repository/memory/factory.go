package memory

import (
	"context"

	"docrag-be/internal/repository/contract"
	"docrag-be/internal/repository/unitofwork"
)

// Factory satisfies unitofwork.RepositoryFactory over the in-memory store.
// Transactions are no-ops: the store applies each mutation atomically.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) SessionRepository() contract.SessionRepository {
	return NewSessionRepository(u.store)
}

func (u *unitOfWork) SessionFileRepository() contract.SessionFileRepository {
	return NewSessionFileRepository(u.store)
}

func (u *unitOfWork) TurnRepository() contract.TurnRepository {
	return NewTurnRepository(u.store)
}

func (u *unitOfWork) CitationRepository() contract.CitationRepository {
	return NewCitationRepository(u.store)
}

func (u *unitOfWork) InsightRepository() contract.InsightRepository {
	return NewInsightRepository(u.store)
}

func (u *unitOfWork) PassageRepository() contract.PassageRepository {
	return NewPassageRepository(u.store)
}
