package mapper

import (
	"docrag-be/internal/entity"
	"docrag-be/internal/model"
)

type InsightMapper struct{}

func NewInsightMapper() *InsightMapper {
	return &InsightMapper{}
}

func (m *InsightMapper) ToEntity(i *model.Insight) *entity.Insight {
	if i == nil {
		return nil
	}

	return &entity.Insight{
		Id:        i.Id,
		SessionId: i.SessionId,
		Content:   i.Content,
		CreatedAt: i.CreatedAt,
	}
}

func (m *InsightMapper) ToModel(i *entity.Insight) *model.Insight {
	if i == nil {
		return nil
	}

	return &model.Insight{
		Id:        i.Id,
		SessionId: i.SessionId,
		Content:   i.Content,
		CreatedAt: i.CreatedAt,
	}
}

func (m *InsightMapper) ToEntities(insights []*model.Insight) []*entity.Insight {
	entities := make([]*entity.Insight, len(insights))
	for i, ins := range insights {
		entities[i] = m.ToEntity(ins)
	}
	return entities
}
