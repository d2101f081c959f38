package mapper

import (
	"docrag-be/internal/entity"
	"docrag-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type PassageMapper struct{}

func NewPassageMapper() *PassageMapper {
	return &PassageMapper{}
}

func (m *PassageMapper) ToEntity(p *model.Passage) *entity.Passage {
	if p == nil {
		return nil
	}

	return &entity.Passage{
		Id:         p.Id,
		SessionId:  p.SessionId,
		Source:     p.Source,
		Page:       p.Page,
		ChunkIndex: p.ChunkIndex,
		Content:    p.Content,
		Embedding:  p.Embedding.Slice(),
		CreatedAt:  p.CreatedAt,
	}
}

func (m *PassageMapper) ToModel(p *entity.Passage) *model.Passage {
	if p == nil {
		return nil
	}

	return &model.Passage{
		Id:         p.Id,
		SessionId:  p.SessionId,
		Source:     p.Source,
		Page:       p.Page,
		ChunkIndex: p.ChunkIndex,
		Content:    p.Content,
		Embedding:  pgvector.NewVector(p.Embedding),
		CreatedAt:  p.CreatedAt,
	}
}

func (m *PassageMapper) ToEntities(passages []*model.Passage) []*entity.Passage {
	entities := make([]*entity.Passage, len(passages))
	for i, p := range passages {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *PassageMapper) ToModels(passages []*entity.Passage) []*model.Passage {
	models := make([]*model.Passage, len(passages))
	for i, p := range passages {
		models[i] = m.ToModel(p)
	}
	return models
}
