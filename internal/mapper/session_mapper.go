package mapper

import (
	"docrag-be/internal/entity"
	"docrag-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	return &entity.Session{
		Id:          s.Id,
		OwnerId:     s.OwnerId,
		Status:      s.Status,
		ErrorDetail: s.ErrorDetail,
		CreatedAt:   s.CreatedAt,
		ProcessedAt: s.ProcessedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	return &model.Session{
		Id:          s.Id,
		OwnerId:     s.OwnerId,
		Status:      s.Status,
		ErrorDetail: s.ErrorDetail,
		CreatedAt:   s.CreatedAt,
		ProcessedAt: s.ProcessedAt,
	}
}

// File Mappers

func (m *SessionMapper) FileToEntity(f *model.SessionFile) *entity.SessionFile {
	if f == nil {
		return nil
	}

	return &entity.SessionFile{
		Id:         f.Id,
		SessionId:  f.SessionId,
		Filename:   f.Filename,
		State:      f.State,
		FailReason: f.FailReason,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func (m *SessionMapper) FileToModel(f *entity.SessionFile) *model.SessionFile {
	if f == nil {
		return nil
	}

	return &model.SessionFile{
		Id:         f.Id,
		SessionId:  f.SessionId,
		Filename:   f.Filename,
		State:      f.State,
		FailReason: f.FailReason,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func (m *SessionMapper) FilesToEntities(files []*model.SessionFile) []*entity.SessionFile {
	entities := make([]*entity.SessionFile, len(files))
	for i, f := range files {
		entities[i] = m.FileToEntity(f)
	}
	return entities
}
