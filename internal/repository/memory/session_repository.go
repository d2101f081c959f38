package memory

import (
	"context"
	"sort"
	"time"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/contract"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) contract.SessionRepository {
	return &SessionRepository{store: store}
}

func sessionField(s *entity.Session) func(string) interface{} {
	return func(field string) interface{} {
		switch field {
		case "id":
			return s.Id
		case "owner_id":
			return s.OwnerId
		case "status":
			return s.Status
		default:
			return nil
		}
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.store.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, id)
	return nil
}

func (r *SessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *SessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	filters, order, page := splitSpecs(specs)

	r.store.mu.RLock()
	var out []*entity.Session
	for _, s := range r.store.sessions {
		ok, err := matches(filters, sessionField(s))
		if err != nil {
			r.store.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, cloneSession(s))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if order != nil && order.Field == "created_at" && order.Desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page), nil
}

func (r *SessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
