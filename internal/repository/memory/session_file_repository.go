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

type SessionFileRepository struct {
	store *Store
}

func NewSessionFileRepository(store *Store) contract.SessionFileRepository {
	return &SessionFileRepository{store: store}
}

func fileField(f *entity.SessionFile) func(string) interface{} {
	return func(field string) interface{} {
		switch field {
		case "id":
			return f.Id
		case "session_id":
			return f.SessionId
		case "filename":
			return f.Filename
		case "state":
			return f.State
		default:
			return nil
		}
	}
}

func (r *SessionFileRepository) Create(ctx context.Context, file *entity.SessionFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if file.Id == uuid.Nil {
		file.Id = uuid.New()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	r.store.files[file.Id] = cloneFile(file)
	return nil
}

func (r *SessionFileRepository) Update(ctx context.Context, file *entity.SessionFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	file.UpdatedAt = &now
	r.store.files[file.Id] = cloneFile(file)
	return nil
}

func (r *SessionFileRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, f := range r.store.files {
		if f.SessionId == sessionId {
			delete(r.store.files, id)
		}
	}
	return nil
}

func (r *SessionFileRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionFile, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *SessionFileRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionFile, error) {
	filters, _, page := splitSpecs(specs)

	r.store.mu.RLock()
	var out []*entity.SessionFile
	for _, f := range r.store.files {
		ok, err := matches(filters, fileField(f))
		if err != nil {
			r.store.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, cloneFile(f))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page), nil
}
