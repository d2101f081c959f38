package mapper

import (
	"docrag-be/internal/entity"
	"docrag-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Turn Mappers

func (m *ChatMapper) TurnToEntity(t *model.Turn) *entity.Turn {
	if t == nil {
		return nil
	}

	return &entity.Turn{
		Id:         t.Id,
		SessionId:  t.SessionId,
		Role:       t.Role,
		Content:    t.Content,
		Seq:        t.Seq,
		Incomplete: t.Incomplete,
		CreatedAt:  t.CreatedAt,
	}
}

func (m *ChatMapper) TurnToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	return &model.Turn{
		Id:         t.Id,
		SessionId:  t.SessionId,
		Role:       t.Role,
		Content:    t.Content,
		Seq:        t.Seq,
		Incomplete: t.Incomplete,
		CreatedAt:  t.CreatedAt,
	}
}

func (m *ChatMapper) TurnsToEntities(turns []*model.Turn) []*entity.Turn {
	entities := make([]*entity.Turn, len(turns))
	for i, t := range turns {
		entities[i] = m.TurnToEntity(t)
	}
	return entities
}

// Citation Mappers

func (m *ChatMapper) CitationToEntity(c *model.TurnCitation) *entity.TurnCitation {
	if c == nil {
		return nil
	}

	return &entity.TurnCitation{
		Id:      c.Id,
		TurnId:  c.TurnId,
		Source:  c.Source,
		Page:    c.Page,
		Snippet: c.Snippet,
		Rank:    c.Rank,
	}
}

func (m *ChatMapper) CitationToModel(c *entity.TurnCitation) *model.TurnCitation {
	if c == nil {
		return nil
	}

	return &model.TurnCitation{
		Id:      c.Id,
		TurnId:  c.TurnId,
		Source:  c.Source,
		Page:    c.Page,
		Snippet: c.Snippet,
		Rank:    c.Rank,
	}
}

func (m *ChatMapper) CitationsToEntities(citations []*model.TurnCitation) []*entity.TurnCitation {
	entities := make([]*entity.TurnCitation, len(citations))
	for i, c := range citations {
		entities[i] = m.CitationToEntity(c)
	}
	return entities
}
