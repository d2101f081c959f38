package memory

import (
	"sync"

	"docrag-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the shared state behind the in-memory repository factory.
// It backs local development and tests where Postgres is not available.
type Store struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*entity.Session
	files     map[uuid.UUID]*entity.SessionFile
	turns     map[uuid.UUID]*entity.Turn
	citations map[uuid.UUID]*entity.TurnCitation
	insights  map[uuid.UUID]*entity.Insight
	passages  map[uuid.UUID]*entity.Passage
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[uuid.UUID]*entity.Session),
		files:     make(map[uuid.UUID]*entity.SessionFile),
		turns:     make(map[uuid.UUID]*entity.Turn),
		citations: make(map[uuid.UUID]*entity.TurnCitation),
		insights:  make(map[uuid.UUID]*entity.Insight),
		passages:  make(map[uuid.UUID]*entity.Passage),
	}
}

func cloneSession(s *entity.Session) *entity.Session {
	c := *s
	return &c
}

func cloneFile(f *entity.SessionFile) *entity.SessionFile {
	c := *f
	return &c
}

func cloneTurn(t *entity.Turn) *entity.Turn {
	c := *t
	return &c
}

func cloneCitation(c *entity.TurnCitation) *entity.TurnCitation {
	d := *c
	return &d
}

func cloneInsight(i *entity.Insight) *entity.Insight {
	c := *i
	return &c
}

func clonePassage(p *entity.Passage) *entity.Passage {
	c := *p
	c.Embedding = append([]float32(nil), p.Embedding...)
	return &c
}
