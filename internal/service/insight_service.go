package service

import (
	"context"
	"fmt"

	"docrag-be/internal/apperr"
	"docrag-be/internal/dto"
	"docrag-be/internal/entity"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/specification"
	"docrag-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IInsightService interface {
	Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateInsightRequest) (*dto.InsightResponse, error)
	List(ctx context.Context, ownerId, sessionId uuid.UUID) ([]dto.InsightResponse, error)
	Delete(ctx context.Context, ownerId, insightId uuid.UUID) error
}

type insightService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewInsightService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IInsightService {
	return &insightService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *insightService) Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateInsightRequest) (*dto.InsightResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.checkOwnership(ctx, uow, ownerId, req.SessionId); err != nil {
		return nil, err
	}

	insight := &entity.Insight{
		SessionId: req.SessionId,
		Content:   req.Content,
	}
	if err := uow.InsightRepository().Create(ctx, insight); err != nil {
		return nil, fmt.Errorf("create insight: %w", err)
	}

	return &dto.InsightResponse{
		Id:        insight.Id,
		SessionId: insight.SessionId,
		Content:   insight.Content,
		CreatedAt: insight.CreatedAt,
	}, nil
}

func (s *insightService) List(ctx context.Context, ownerId, sessionId uuid.UUID) ([]dto.InsightResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.checkOwnership(ctx, uow, ownerId, sessionId); err != nil {
		return nil, err
	}

	insights, err := uow.InsightRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("load insights: %w", err)
	}

	out := make([]dto.InsightResponse, len(insights))
	for i, ins := range insights {
		out[i] = dto.InsightResponse{
			Id:        ins.Id,
			SessionId: ins.SessionId,
			Content:   ins.Content,
			CreatedAt: ins.CreatedAt,
		}
	}
	return out, nil
}

func (s *insightService) Delete(ctx context.Context, ownerId, insightId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	insight, err := uow.InsightRepository().FindOne(ctx, specification.ByID{ID: insightId})
	if err != nil {
		return fmt.Errorf("load insight: %w", err)
	}
	if insight == nil {
		return apperr.NotFound("insight", insightId)
	}
	if err := s.checkOwnership(ctx, uow, ownerId, insight.SessionId); err != nil {
		return err
	}

	return uow.InsightRepository().Delete(ctx, insightId)
}

func (s *insightService) checkOwnership(ctx context.Context, uow unitofwork.UnitOfWork, ownerId, sessionId uuid.UUID) error {
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.OwnerId != ownerId {
		return apperr.NotFound("session", sessionId)
	}
	return nil
}
