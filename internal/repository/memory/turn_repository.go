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

type TurnRepository struct {
	store *Store
}

func NewTurnRepository(store *Store) contract.TurnRepository {
	return &TurnRepository{store: store}
}

func turnField(t *entity.Turn) func(string) interface{} {
	return func(field string) interface{} {
		switch field {
		case "id":
			return t.Id
		case "session_id":
			return t.SessionId
		case "role":
			return t.Role
		default:
			return nil
		}
	}
}

func (r *TurnRepository) Create(ctx context.Context, turn *entity.Turn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	maxSeq := 0
	for _, existing := range r.store.turns {
		if existing.SessionId == turn.SessionId && existing.Seq > maxSeq {
			maxSeq = existing.Seq
		}
	}
	turn.Seq = maxSeq + 1

	r.store.turns[turn.Id] = cloneTurn(turn)
	return nil
}

func (r *TurnRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, t := range r.store.turns {
		if t.SessionId == sessionId {
			delete(r.store.turns, id)
		}
	}
	return nil
}

func (r *TurnRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error) {
	filters, order, page := splitSpecs(specs)

	r.store.mu.RLock()
	var out []*entity.Turn
	for _, t := range r.store.turns {
		ok, err := matches(filters, turnField(t))
		if err != nil {
			r.store.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, cloneTurn(t))
		}
	}
	r.store.mu.RUnlock()

	desc := order != nil && order.Desc
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Seq > out[j].Seq
		}
		return out[i].Seq < out[j].Seq
	})
	return paginate(out, page), nil
}

func (r *TurnRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
