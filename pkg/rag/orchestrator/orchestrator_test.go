package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"docrag-be/internal/constant"
	"docrag-be/internal/entity"
	"docrag-be/internal/repository/memory"
	"docrag-be/internal/repository/specification"
	"docrag-be/pkg/llm"
	"docrag-be/pkg/rag/citation"
	"docrag-be/pkg/rag/retrieve"
	"docrag-be/pkg/rag/stream"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubRetriever struct {
	passages []retrieve.Passage
	err      error
}

func (s *stubRetriever) Search(context.Context, uuid.UUID, string, int) ([]retrieve.Passage, error) {
	return s.passages, s.err
}

func (s *stubRetriever) Purge(context.Context, uuid.UUID) error { return nil }

type stubProvider struct {
	chunks []llm.StreamChunk
}

func (s *stubProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", nil
}

func (s *stubProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", nil
}

func (s *stubProvider) ChatStream(ctx context.Context, _ []llm.Message, _ ...llm.Option) (<-chan llm.StreamChunk, error) {
	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		for _, c := range s.chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func newTestOrchestrator(t *testing.T, status string, retriever retrieve.Retriever, provider llm.StreamingProvider) (*Orchestrator, *memory.Store, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)

	sessionId := uuid.New()
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SessionRepository().Create(context.Background(), &entity.Session{
		Id:      sessionId,
		OwnerId: uuid.New(),
		Status:  status,
	}))

	o := New(factory, retriever, provider, citation.NewMapper(200), nopLogger{}, Config{
		TopK:          5,
		HistoryLimit:  6,
		ContextBudget: 8000,
		BufferSize:    8,
	})
	return o, store, sessionId
}

func collect(t *testing.T, events <-chan stream.Event) []stream.Event {
	t.Helper()
	var out []stream.Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestAskStreamsTokensThenEnd(t *testing.T) {
	retriever := &stubRetriever{passages: []retrieve.Passage{
		{Source: "report.pdf", Content: "context text", Score: 0.9},
	}}
	provider := &stubProvider{chunks: []llm.StreamChunk{
		{Text: "The answer "},
		{Text: "is 42."},
		{Done: true},
	}}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, provider)

	events, err := o.Ask(context.Background(), sessionId, "what is the answer?")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 4)
	assert.Equal(t, "The answer ", got[0].Content)
	assert.Equal(t, "is 42.", got[1].Content)
	assert.Equal(t, stream.TypeSources, got[2].Type)
	assert.Equal(t, stream.TypeEnd, got[3].Type)

	refs, ok := got[2].Content.([]stream.SourceRef)
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, "report.pdf", refs[0].Source)

	// Both turns persisted, assistant content is the token concatenation.
	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, constant.TurnRoleUser, turns[0].Role)
	assert.Equal(t, "what is the answer?", turns[0].Content)
	assert.Equal(t, constant.TurnRoleAssistant, turns[1].Role)
	assert.Equal(t, "The answer is 42.", turns[1].Content)
	assert.False(t, turns[1].Incomplete)
	assert.Greater(t, turns[1].Seq, turns[0].Seq)
}

func TestAskZeroPassagesEmitsEmptySources(t *testing.T) {
	retriever := &stubRetriever{}
	provider := &stubProvider{chunks: []llm.StreamChunk{
		{Text: "I found nothing relevant."},
		{Done: true},
	}}
	o, _, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, provider)

	events, err := o.Ask(context.Background(), sessionId, "anything?")
	require.NoError(t, err)

	got := collect(t, events)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, stream.TypeEnd, got[len(got)-1].Type)
	assert.Equal(t, stream.TypeSources, got[len(got)-2].Type)
	refs, ok := got[len(got)-2].Content.([]stream.SourceRef)
	require.True(t, ok)
	assert.Empty(t, refs)
}

func TestAskMidStreamFailurePersistsIncomplete(t *testing.T) {
	retriever := &stubRetriever{passages: []retrieve.Passage{
		{Source: "a.txt", Content: "some context"},
	}}
	provider := &stubProvider{chunks: []llm.StreamChunk{
		{Text: "partial "},
		{Text: "answer"},
		{Err: errors.New("model crashed")},
	}}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, provider)

	events, err := o.Ask(context.Background(), sessionId, "q")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 3)
	assert.Equal(t, "partial ", got[0].Content)
	assert.Equal(t, "answer", got[1].Content)
	assert.Equal(t, stream.TypeError, got[2].Type)

	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "partial answer", turns[1].Content)
	assert.True(t, turns[1].Incomplete)
}

func TestAskClientGoneBeforeEndPersistsIncomplete(t *testing.T) {
	retriever := &stubRetriever{passages: []retrieve.Passage{
		{Source: "a.txt", Content: "some context"},
	}}
	provider := &stubProvider{chunks: []llm.StreamChunk{
		{Text: "full answer"},
		{Done: true},
	}}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, provider)
	// Capacity one: with the reader gone, the sources event fills the buffer
	// and the end event can never be delivered.
	o.cfg.BufferSize = 1

	ctx, cancel := context.WithCancel(context.Background())
	events, err := o.Ask(ctx, sessionId, "q")
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, stream.TypeToken, first.Type)
	cancel()

	factory := memory.NewFactory(store)
	require.Eventually(t, func() bool {
		turns, err := factory.NewUnitOfWork(context.Background()).TurnRepository().FindAll(
			context.Background(), specification.BySessionID{SessionID: sessionId})
		return err == nil && len(turns) == 2
	}, 2*time.Second, 10*time.Millisecond)

	for range events {
	}

	// The answer completed, but the caller never saw the terminal event, so it
	// is recorded as cut off and without citations.
	uow := factory.NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "full answer", turns[1].Content)
	assert.True(t, turns[1].Incomplete)

	citations, err := uow.CitationRepository().FindAll(context.Background(),
		specification.ByTurnID{TurnID: turns[1].Id})
	require.NoError(t, err)
	assert.Empty(t, citations)
}

func TestAskSessionNotReady(t *testing.T) {
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusProcessing,
		&stubRetriever{}, &stubProvider{})

	events, err := o.Ask(context.Background(), sessionId, "q")
	require.Error(t, err)
	assert.Nil(t, events)

	// No events means no transcript writes either.
	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAskUnknownSession(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, constant.SessionStatusReady,
		&stubRetriever{}, &stubProvider{})

	_, err := o.Ask(context.Background(), uuid.New(), "q")
	require.Error(t, err)
}

func TestAskRetrievalFailureEmitsErrorAndKeepsUserTurn(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("index offline")}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, &stubProvider{})

	events, err := o.Ask(context.Background(), sessionId, "q")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, stream.TypeError, got[0].Type)

	// The question survives in history even though no answer was produced.
	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, constant.TurnRoleUser, turns[0].Role)
}

func TestAskCitationsOnlyForIncludedPassages(t *testing.T) {
	// Budget of 20 chars fits only the first passage, so the second must not
	// be cited even though it was retrieved.
	retriever := &stubRetriever{passages: []retrieve.Passage{
		{Source: "first.txt", Content: "short text"},
		{Source: "second.txt", Content: "this one is far too long to fit the remaining budget"},
	}}
	provider := &stubProvider{chunks: []llm.StreamChunk{
		{Text: "ok"},
		{Done: true},
	}}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, provider)
	o.cfg.ContextBudget = 20

	events, err := o.Ask(context.Background(), sessionId, "q")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 3)
	refs, ok := got[1].Content.([]stream.SourceRef)
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, "first.txt", refs[0].Source)

	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	turns, err := uow.TurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.Len(t, turns, 2)

	citations, err := uow.CitationRepository().FindAll(context.Background(),
		specification.ByTurnID{TurnID: turns[1].Id})
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, "first.txt", citations[0].Source)
}

func TestAskHistoryIsCarriedOldestFirst(t *testing.T) {
	retriever := &stubRetriever{}
	recorded := &recordingProvider{stubProvider: stubProvider{
		chunks: []llm.StreamChunk{{Text: "ok"}, {Done: true}},
	}}
	o, store, sessionId := newTestOrchestrator(t, constant.SessionStatusReady, retriever, recorded)

	// Seed two prior turns.
	uow := memory.NewFactory(store).NewUnitOfWork(context.Background())
	require.NoError(t, uow.TurnRepository().Create(context.Background(), &entity.Turn{
		SessionId: sessionId, Role: constant.TurnRoleUser, Content: "earlier question",
	}))
	require.NoError(t, uow.TurnRepository().Create(context.Background(), &entity.Turn{
		SessionId: sessionId, Role: constant.TurnRoleAssistant, Content: "earlier answer",
	}))

	events, err := o.Ask(context.Background(), sessionId, "follow-up")
	require.NoError(t, err)
	collect(t, events)

	require.NotEmpty(t, recorded.messages)
	// system, user, assistant, user
	require.Len(t, recorded.messages, 4)
	assert.Equal(t, "system", recorded.messages[0].Role)
	assert.Equal(t, "earlier question", recorded.messages[1].Content)
	assert.Equal(t, "earlier answer", recorded.messages[2].Content)
	assert.Equal(t, "follow-up", recorded.messages[3].Content)
}

type recordingProvider struct {
	stubProvider
	messages []llm.Message
}

func (r *recordingProvider) ChatStream(ctx context.Context, messages []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	r.messages = messages
	return r.stubProvider.ChatStream(ctx, messages, opts...)
}
