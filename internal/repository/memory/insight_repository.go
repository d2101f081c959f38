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

type InsightRepository struct {
	store *Store
}

func NewInsightRepository(store *Store) contract.InsightRepository {
	return &InsightRepository{store: store}
}

func insightField(i *entity.Insight) func(string) interface{} {
	return func(field string) interface{} {
		switch field {
		case "id":
			return i.Id
		case "session_id":
			return i.SessionId
		default:
			return nil
		}
	}
}

func (r *InsightRepository) Create(ctx context.Context, insight *entity.Insight) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if insight.Id == uuid.Nil {
		insight.Id = uuid.New()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now()
	}
	r.store.insights[insight.Id] = cloneInsight(insight)
	return nil
}

func (r *InsightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.insights, id)
	return nil
}

func (r *InsightRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, i := range r.store.insights {
		if i.SessionId == sessionId {
			delete(r.store.insights, id)
		}
	}
	return nil
}

func (r *InsightRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Insight, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *InsightRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Insight, error) {
	filters, order, page := splitSpecs(specs)

	r.store.mu.RLock()
	var out []*entity.Insight
	for _, i := range r.store.insights {
		ok, err := matches(filters, insightField(i))
		if err != nil {
			r.store.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, cloneInsight(i))
		}
	}
	r.store.mu.RUnlock()

	desc := order != nil && order.Desc
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page), nil
}
