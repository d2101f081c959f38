package memory

import (
	"context"
	"sort"

	"docrag-be/internal/entity"
	"docrag-be/internal/repository/contract"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CitationRepository struct {
	store *Store
}

func NewCitationRepository(store *Store) contract.CitationRepository {
	return &CitationRepository{store: store}
}

func citationField(c *entity.TurnCitation) func(string) interface{} {
	return func(field string) interface{} {
		switch field {
		case "id":
			return c.Id
		case "turn_id":
			return c.TurnId
		case "source":
			return c.Source
		default:
			return nil
		}
	}
}

func (r *CitationRepository) CreateBulk(ctx context.Context, citations []*entity.TurnCitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range citations {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		r.store.citations[c.Id] = cloneCitation(c)
	}
	return nil
}

func (r *CitationRepository) DeleteByTurnIds(ctx context.Context, turnIds []uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ids := make(map[uuid.UUID]struct{}, len(turnIds))
	for _, id := range turnIds {
		ids[id] = struct{}{}
	}
	for id, c := range r.store.citations {
		if _, ok := ids[c.TurnId]; ok {
			delete(r.store.citations, id)
		}
	}
	return nil
}

func (r *CitationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TurnCitation, error) {
	filters, _, page := splitSpecs(specs)

	r.store.mu.RLock()
	var out []*entity.TurnCitation
	for _, c := range r.store.citations {
		ok, err := matches(filters, citationField(c))
		if err != nil {
			r.store.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, cloneCitation(c))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return paginate(out, page), nil
}
