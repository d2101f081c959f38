package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docrag-be/internal/apperr"
	"docrag-be/internal/config"
	"docrag-be/internal/constant"
	"docrag-be/internal/dto"
	"docrag-be/internal/entity"
	"docrag-be/internal/repository/memory"
	"docrag-be/internal/repository/specification"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/lock"
	"docrag-be/pkg/rag/ingest"
	"docrag-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
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

type stubIngestor struct {
	report       *ingest.Report
	err          error
	calls        int
	gotFilenames []string
}

func (s *stubIngestor) Ingest(ctx context.Context, sessionId uuid.UUID, dir string, filenames []string) (*ingest.Report, error) {
	s.calls++
	s.gotFilenames = filenames
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type sessionFixture struct {
	service    ISessionService
	uowFactory unitofwork.RepositoryFactory
	ingestor   *stubIngestor
	lock       lock.SessionLock
	pubSub     *gochannel.GoChannel
	uploadDir  string
}

func newSessionFixture(t *testing.T, ing *stubIngestor) *sessionFixture {
	t.Helper()

	uowFactory := memory.NewFactory(memory.NewStore())
	sessionLock := lock.NewLocalLock()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	uploadDir := t.TempDir()

	svc := NewSessionService(
		uowFactory,
		ing,
		sessionLock,
		store.NewSessionCache(),
		pubSub,
		nil,
		nopLogger{},
		config.IngestConfig{AllowedExtensions: []string{".txt", ".md"}},
		uploadDir,
	)

	return &sessionFixture{
		service:    svc,
		uowFactory: uowFactory,
		ingestor:   ing,
		lock:       sessionLock,
		pubSub:     pubSub,
		uploadDir:  uploadDir,
	}
}

type uploadFile struct {
	name    string
	content string
}

func fileHeaders(t *testing.T, files []uploadFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func TestUploadCreatesSessionAndSkipsDisallowedExtensions(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()

	resp, err := fx.service.Upload(ctx, ownerId, nil, fileHeaders(t, []uploadFile{
		{name: "notes.txt", content: "hello"},
		{name: "binary.exe", content: "nope"},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"notes.txt"}, resp.FilenamesSaved)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, []string{"binary.exe"}, resp.SkippedFiles)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: resp.SessionId})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, ownerId, session.OwnerId)
	assert.Equal(t, constant.SessionStatusCreated, session.Status)

	files, err := uow.SessionFileRepository().FindAll(ctx, specification.BySessionID{SessionID: resp.SessionId})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, constant.FileStatePending, files[0].State)

	saved, err := os.ReadFile(filepath.Join(fx.uploadDir, resp.SessionId.String(), "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(saved))
}

func TestUploadToReadySessionResetsStatus(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()

	sessionId := uuid.New()
	now := time.Now()
	uow := fx.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, &entity.Session{
		Id:          sessionId,
		OwnerId:     ownerId,
		Status:      constant.SessionStatusReady,
		ProcessedAt: &now,
	}))

	_, err := fx.service.Upload(ctx, ownerId, &sessionId, fileHeaders(t, []uploadFile{
		{name: "extra.md", content: "more"},
	}))
	require.NoError(t, err)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCreated, session.Status)
	assert.Nil(t, session.ProcessedAt)
}

func TestUploadRegistersClientSuppliedId(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()

	sessionId := uuid.New()
	resp, err := fx.service.Upload(ctx, ownerId, &sessionId, fileHeaders(t, []uploadFile{
		{name: "notes.txt", content: "x"},
	}))
	require.NoError(t, err)
	assert.Equal(t, sessionId, resp.SessionId)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, ownerId, session.OwnerId)
}

func TestUploadRejectsTakenSessionId(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ctx := context.Background()

	sessionId := uuid.New()
	uow := fx.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, &entity.Session{
		Id:      sessionId,
		OwnerId: uuid.New(),
		Status:  constant.SessionStatusCreated,
	}))

	_, err := fx.service.Upload(ctx, uuid.New(), &sessionId, fileHeaders(t, []uploadFile{
		{name: "notes.txt", content: "x"},
	}))
	assert.ErrorIs(t, err, apperr.ErrDuplicateSession)
}

func seedSessionWithFiles(t *testing.T, fx *sessionFixture, ownerId uuid.UUID, filenames ...string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	sessionId := uuid.New()
	uow := fx.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, &entity.Session{
		Id:      sessionId,
		OwnerId: ownerId,
		Status:  constant.SessionStatusCreated,
	}))
	for _, name := range filenames {
		require.NoError(t, uow.SessionFileRepository().Create(ctx, &entity.SessionFile{
			SessionId: sessionId,
			Filename:  name,
			State:     constant.FileStatePending,
		}))
	}
	return sessionId
}

func TestProcessAllSucceededMarksReady(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{report: &ingest.Report{
		Succeeded: []string{"a.txt", "b.txt"},
	}})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt", "b.txt")

	resp, err := fx.service.Process(ctx, ownerId, sessionId)
	require.NoError(t, err)

	assert.Equal(t, constant.SessionStatusReady, resp.Status)
	assert.Equal(t, []string{"a.txt", "b.txt"}, resp.ProcessedFiles)
	assert.Empty(t, resp.FailedFiles)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusReady, session.Status)
	assert.NotNil(t, session.ProcessedAt)
}

func TestProcessPartialFailureMarksErrorButKeepsIndexed(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{report: &ingest.Report{
		Succeeded: []string{"a.txt"},
		Failed:    []ingest.FileResult{{Filename: "b.txt", Reason: "unreadable"}},
	}})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt", "b.txt")

	resp, err := fx.service.Process(ctx, ownerId, sessionId)
	require.NoError(t, err)

	assert.Equal(t, constant.SessionStatusError, resp.Status)
	assert.Equal(t, []string{"a.txt"}, resp.ProcessedFiles)
	require.Len(t, resp.FailedFiles, 1)
	assert.Equal(t, "b.txt", resp.FailedFiles[0].Filename)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusError, session.Status)
	require.NotNil(t, session.ErrorDetail)

	// Partial success is preserved.
	files, err := uow.SessionFileRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	states := map[string]string{}
	for _, f := range files {
		states[f.Filename] = f.State
	}
	assert.Equal(t, constant.FileStateIndexed, states["a.txt"])
	assert.Equal(t, constant.FileStateFailed, states["b.txt"])
}

func TestProcessRetriesOnlyFailedFiles(t *testing.T) {
	ing := &stubIngestor{report: &ingest.Report{Succeeded: []string{"b.txt"}}}
	fx := newSessionFixture(t, ing)
	ownerId := uuid.New()
	ctx := context.Background()

	sessionId := uuid.New()
	reason := "unreadable"
	uow := fx.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, &entity.Session{
		Id:      sessionId,
		OwnerId: ownerId,
		Status:  constant.SessionStatusError,
	}))
	require.NoError(t, uow.SessionFileRepository().Create(ctx, &entity.SessionFile{
		SessionId: sessionId, Filename: "a.txt", State: constant.FileStateIndexed,
	}))
	require.NoError(t, uow.SessionFileRepository().Create(ctx, &entity.SessionFile{
		SessionId: sessionId, Filename: "b.txt", State: constant.FileStateFailed, FailReason: &reason,
	}))

	resp, err := fx.service.Process(ctx, ownerId, sessionId)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.txt"}, ing.gotFilenames)
	assert.Equal(t, constant.SessionStatusReady, resp.Status)
}

func TestProcessAllFilesFailedMarksError(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{report: &ingest.Report{
		Failed: []ingest.FileResult{{Filename: "a.txt", Reason: "unreadable"}},
	}})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt")

	resp, err := fx.service.Process(ctx, ownerId, sessionId)
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusError, resp.Status)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusError, session.Status)
	require.NotNil(t, session.ErrorDetail)
}

func TestProcessIngestFailureMarksError(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{err: errors.New("embedder down")})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt")

	_, err := fx.service.Process(ctx, ownerId, sessionId)
	require.Error(t, err)

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusError, session.Status)
}

func TestProcessWithoutFilesFails(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	sessionId := seedSessionWithFiles(t, fx, ownerId)

	_, err := fx.service.Process(context.Background(), ownerId, sessionId)
	assert.ErrorIs(t, err, apperr.ErrSessionNotReady)
}

func TestProcessConcurrentRunRejected(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt")

	acquired, err := fx.lock.Acquire(ctx, sessionId, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = fx.service.Process(ctx, ownerId, sessionId)
	assert.ErrorIs(t, err, apperr.ErrAlreadyProcessing)
	assert.Zero(t, fx.ingestor.calls)
}

func TestStatusReportsFiles(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt")

	resp, err := fx.service.Status(ctx, ownerId, sessionId)
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCreated, resp.Status)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "a.txt", resp.Files[0].Filename)

	_, err = fx.service.Status(ctx, uuid.New(), sessionId)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteRemovesSessionAndPublishesCleanup(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})
	ownerId := uuid.New()
	ctx := context.Background()
	sessionId := seedSessionWithFiles(t, fx, ownerId, "a.txt")

	uow := fx.uowFactory.NewUnitOfWork(ctx)
	turn := &entity.Turn{SessionId: sessionId, Role: constant.TurnRoleUser, Content: "hi"}
	require.NoError(t, uow.TurnRepository().Create(ctx, turn))
	require.NoError(t, uow.InsightRepository().Create(ctx, &entity.Insight{
		SessionId: sessionId,
		Content:   "keep this",
	}))

	messages, err := fx.pubSub.Subscribe(ctx, constant.SessionCleanupTopic)
	require.NoError(t, err)

	resp, err := fx.service.Delete(ctx, ownerId, sessionId)
	require.NoError(t, err)
	assert.True(t, resp.Deleted)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Nil(t, session)

	turns, err := uow.TurnRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	assert.Empty(t, turns)

	insights, err := uow.InsightRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	assert.Empty(t, insights)

	select {
	case msg := <-messages:
		var payload dto.SessionCleanupMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, sessionId, payload.SessionId)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("expected a cleanup message")
	}
}

func TestDeleteUnknownSession(t *testing.T) {
	fx := newSessionFixture(t, &stubIngestor{})

	_, err := fx.service.Delete(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}
