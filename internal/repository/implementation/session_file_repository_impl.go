package implementation

import (
	"context"
	"errors"

	"docrag-be/internal/entity"
	"docrag-be/internal/mapper"
	"docrag-be/internal/model"
	"docrag-be/internal/repository/contract"
	"docrag-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionFileRepository(db *gorm.DB) contract.SessionFileRepository {
	return &SessionFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionFileRepositoryImpl) Create(ctx context.Context, file *entity.SessionFile) error {
	m := r.mapper.FileToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.FileToEntity(m)
	return nil
}

func (r *SessionFileRepositoryImpl) Update(ctx context.Context, file *entity.SessionFile) error {
	m := r.mapper.FileToModel(file)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.FileToEntity(m)
	return nil
}

func (r *SessionFileRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SessionFile{}).Error
}

func (r *SessionFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionFile, error) {
	var m model.SessionFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FileToEntity(&m), nil
}

func (r *SessionFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionFile, error) {
	var models []*model.SessionFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.FilesToEntities(models), nil
}
