package service

import (
	"context"
	"fmt"

	"docrag-be/internal/apperr"
	"docrag-be/internal/dto"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/specification"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/rag/orchestrator"
	"docrag-be/pkg/rag/stream"

	"github.com/google/uuid"
)

type IChatService interface {
	Ask(ctx context.Context, ownerId, sessionId uuid.UUID, query string) (<-chan stream.Event, error)
	History(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *orchestrator.Orchestrator
	logger       logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, orch *orchestrator.Orchestrator, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		orchestrator: orch,
		logger:       log,
	}
}

func (s *chatService) Ask(ctx context.Context, ownerId, sessionId uuid.UUID, query string) (<-chan stream.Event, error) {
	if err := s.checkOwnership(ctx, ownerId, sessionId); err != nil {
		return nil, err
	}

	s.logger.Info("ChatService", "Chat request accepted", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return s.orchestrator.Ask(ctx, sessionId, query)
}

// History returns the transcript in Seq order with each assistant turn's
// citations attached.
func (s *chatService) History(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	if err := s.checkOwnership(ctx, ownerId, sessionId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "seq"},
	)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	resp := &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Turns:     make([]dto.TurnDTO, len(turns)),
	}
	for i, t := range turns {
		turnDTO := dto.TurnDTO{
			Id:         t.Id,
			Role:       t.Role,
			Content:    t.Content,
			Incomplete: t.Incomplete,
			CreatedAt:  t.CreatedAt,
		}

		citations, err := uow.CitationRepository().FindAll(ctx, specification.ByTurnID{TurnID: t.Id})
		if err != nil {
			return nil, fmt.Errorf("load citations: %w", err)
		}
		for _, c := range citations {
			var displayPage *int
			if c.Page != nil {
				dp := *c.Page + 1
				displayPage = &dp
			}
			turnDTO.Citations = append(turnDTO.Citations, dto.CitationDTO{
				Source:         c.Source,
				Page:           displayPage,
				ContentSnippet: c.Snippet,
			})
		}
		resp.Turns[i] = turnDTO
	}
	return resp, nil
}

func (s *chatService) checkOwnership(ctx context.Context, ownerId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.OwnerId != ownerId {
		return apperr.NotFound("session", sessionId)
	}
	return nil
}
