package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"docrag-be/internal/apperr"
	"docrag-be/internal/constant"
	"docrag-be/internal/entity"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/specification"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/llm"
	"docrag-be/pkg/rag/citation"
	"docrag-be/pkg/rag/prompt"
	"docrag-be/pkg/rag/retrieve"
	"docrag-be/pkg/rag/stream"

	"github.com/google/uuid"
)

// Config bounds one chat exchange.
type Config struct {
	TopK          int
	HistoryLimit  int // prior turns carried into the prompt
	ContextBudget int // max characters of passage text
	BufferSize    int // event channel capacity
}

// Orchestrator runs the retrieve-prompt-generate-persist cycle for one
// question against one session.
type Orchestrator struct {
	uowFactory unitofwork.RepositoryFactory
	retriever  retrieve.Retriever
	provider   llm.StreamingProvider
	citations  *citation.Mapper
	logger     logger.ILogger
	cfg        Config
}

func New(uowFactory unitofwork.RepositoryFactory, retriever retrieve.Retriever, provider llm.StreamingProvider, citations *citation.Mapper, log logger.ILogger, cfg Config) *Orchestrator {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 32
	}
	return &Orchestrator{
		uowFactory: uowFactory,
		retriever:  retriever,
		provider:   provider,
		citations:  citations,
		logger:     log,
		cfg:        cfg,
	}
}

// Ask validates the session and starts the exchange. An unknown or not-ready
// session is returned as an error and nothing is emitted; once the channel is
// returned, all failures travel in-band as an "error" event. The channel is
// closed after the terminal event, and only after the exchange has been
// persisted.
func (o *Orchestrator) Ask(ctx context.Context, sessionId uuid.UUID, query string) (<-chan stream.Event, error) {
	uow := o.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, apperr.NotFound("session", sessionId)
	}
	if session.Status != constant.SessionStatusReady {
		return nil, fmt.Errorf("session %s is %s: %w", sessionId, session.Status, apperr.ErrSessionNotReady)
	}

	events := make(chan stream.Event, o.cfg.BufferSize)
	go o.run(ctx, sessionId, query, events)
	return events, nil
}

func (o *Orchestrator) run(ctx context.Context, sessionId uuid.UUID, query string, events chan<- stream.Event) {
	defer close(events)

	emit := func(e stream.Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// A failed turn still records the user turn, so the conversation stays
	// reconstructable from history.
	fail := func(message string, cause error) {
		o.logger.Error("ChatOrchestrator", "Chat turn failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      cause.Error(),
		})
		emit(stream.Event{Type: stream.TypeError, Content: message})
		o.persistOrLog(sessionId, query, "", nil, false, false)
	}

	passages, err := o.retriever.Search(ctx, sessionId, query, o.cfg.TopK)
	if err != nil {
		fail("retrieval failed", fmt.Errorf("%w: %v", apperr.ErrRetrievalFailed, err))
		return
	}

	history, err := o.loadHistory(ctx, sessionId)
	if err != nil {
		fail("retrieval failed", fmt.Errorf("load history: %w", err))
		return
	}

	messages, included := prompt.NewContextualBuilder(query, history, passages, o.cfg.ContextBudget).Build()
	sources := o.citations.Map(included)

	tokens, err := o.provider.ChatStream(ctx, messages)
	if err != nil {
		fail("generation failed", fmt.Errorf("%w: %v", apperr.ErrGenerationFailed, err))
		return
	}

	var answer strings.Builder
	incomplete := false
	var streamErr error

	for chunk := range tokens {
		if chunk.Err != nil {
			streamErr = chunk.Err
			incomplete = true
			break
		}
		if chunk.Text != "" {
			answer.WriteString(chunk.Text)
			if !emit(stream.Event{Type: stream.TypeToken, Content: chunk.Text}) {
				// Client went away. Keep what we have and persist it as an
				// incomplete turn.
				incomplete = true
				break
			}
		}
		if chunk.Done {
			break
		}
	}

	if streamErr == nil && ctx.Err() != nil && !incomplete {
		incomplete = true
	}

	if streamErr != nil {
		o.logger.Error("ChatOrchestrator", "Generation failed mid-stream", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      streamErr.Error(),
		})
		emit(stream.Event{Type: stream.TypeError, Content: "generation failed"})
		o.persistOrLog(sessionId, query, answer.String(), nil, true, true)
		return
	}

	if incomplete {
		o.persistOrLog(sessionId, query, answer.String(), nil, true, true)
		return
	}

	// Citations are reported only for a completed answer, after the tokens.
	if emit(stream.Event{Type: stream.TypeSources, Content: sources}) &&
		emit(stream.Event{Type: stream.TypeEnd}) {
		o.persistOrLog(sessionId, query, answer.String(), sources, false, true)
		return
	}

	// The terminal event never reached the caller; record the turn as cut off.
	o.persistOrLog(sessionId, query, answer.String(), nil, true, true)
}

// persistOrLog records the exchange; a storage failure degrades to a log line
// because the caller already has the answer.
func (o *Orchestrator) persistOrLog(sessionId uuid.UUID, query, answer string, sources []stream.SourceRef, incomplete, withAssistant bool) {
	if err := o.persist(sessionId, query, answer, sources, incomplete, withAssistant); err != nil {
		o.logger.Error("ChatOrchestrator", "Transcript persistence degraded", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      fmt.Errorf("%w: %v", apperr.ErrPersistenceDegraded, err).Error(),
		})
	}
}

func (o *Orchestrator) loadHistory(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	if o.cfg.HistoryLimit <= 0 {
		return nil, nil
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	// Newest first, then reversed: the limit must drop the oldest turns.
	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "seq", Desc: true},
		specification.Pagination{Limit: o.cfg.HistoryLimit},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, len(turns))
	for i, t := range turns {
		role := "user"
		if t.Role == constant.TurnRoleAssistant {
			role = "assistant"
		}
		messages[len(turns)-1-i] = llm.Message{Role: role, Content: t.Content}
	}
	return messages, nil
}

// persist writes the user turn, and when the generator produced anything, the
// assistant turn plus citations, in one transaction. Uses a fresh context: the
// request context may already be cancelled when the client disconnects
// mid-stream.
func (o *Orchestrator) persist(sessionId uuid.UUID, query, answer string, sources []stream.SourceRef, incomplete, withAssistant bool) error {
	ctx := context.Background()
	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	userTurn := &entity.Turn{
		SessionId: sessionId,
		Role:      constant.TurnRoleUser,
		Content:   query,
	}
	if err := uow.TurnRepository().Create(ctx, userTurn); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("persist user turn: %w", err)
	}

	if !withAssistant {
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	}

	assistantTurn := &entity.Turn{
		SessionId:  sessionId,
		Role:       constant.TurnRoleAssistant,
		Content:    answer,
		Incomplete: incomplete,
	}
	if err := uow.TurnRepository().Create(ctx, assistantTurn); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("persist assistant turn: %w", err)
	}

	if len(sources) > 0 {
		citations := make([]*entity.TurnCitation, len(sources))
		for i, s := range sources {
			var page *int
			if s.Page != nil {
				// Stored zero-based; SourceRef carries the display value.
				p := *s.Page - 1
				page = &p
			}
			citations[i] = &entity.TurnCitation{
				TurnId:  assistantTurn.Id,
				Source:  s.Source,
				Page:    page,
				Snippet: s.ContentSnippet,
				Rank:    i,
			}
		}
		if err := uow.CitationRepository().CreateBulk(ctx, citations); err != nil {
			_ = uow.Rollback()
			return fmt.Errorf("persist citations: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
