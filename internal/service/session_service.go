package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docrag-be/internal/apperr"
	"docrag-be/internal/config"
	"docrag-be/internal/constant"
	"docrag-be/internal/dto"
	"docrag-be/internal/entity"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/specification"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/events"
	"docrag-be/pkg/lock"
	"docrag-be/pkg/nats"
	"docrag-be/pkg/rag/ingest"
	"docrag-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const processLockTTL = 15 * time.Minute

type ISessionService interface {
	Upload(ctx context.Context, ownerId uuid.UUID, sessionId *uuid.UUID, files []*multipart.FileHeader) (*dto.UploadDocumentsResponse, error)
	Process(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.ProcessDocumentsResponse, error)
	Status(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.SessionStatusResponse, error)
	Delete(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.DeleteSessionResponse, error)
}

type sessionService struct {
	uowFactory   unitofwork.RepositoryFactory
	ingestor     ingest.Ingestor
	sessionLock  lock.SessionLock
	sessionCache *store.SessionCache
	pubSub       *gochannel.GoChannel
	natsPub      *nats.Publisher
	logger       logger.ILogger
	uploadDir    string
	allowedExts  map[string]struct{}
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	ingestor ingest.Ingestor,
	sessionLock lock.SessionLock,
	sessionCache *store.SessionCache,
	pubSub *gochannel.GoChannel,
	natsPub *nats.Publisher,
	log logger.ILogger,
	cfg config.IngestConfig,
	uploadDir string,
) ISessionService {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[ext] = struct{}{}
	}
	return &sessionService{
		uowFactory:   uowFactory,
		ingestor:     ingestor,
		sessionLock:  sessionLock,
		sessionCache: sessionCache,
		pubSub:       pubSub,
		natsPub:      natsPub,
		logger:       log,
		uploadDir:    uploadDir,
		allowedExts:  allowed,
	}
}

// Upload stores the documents on disk and registers them with the session.
// Without a session id a new session is created; with one, the files join
// the existing session so users can add documents across multiple uploads.
func (s *sessionService) Upload(ctx context.Context, ownerId uuid.UUID, sessionId *uuid.UUID, files []*multipart.FileHeader) (*dto.UploadDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var session *entity.Session
	if sessionId != nil {
		found, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: *sessionId})
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		switch {
		case found == nil:
			// Client-chosen id registers a fresh session.
			session = &entity.Session{
				Id:      *sessionId,
				OwnerId: ownerId,
				Status:  constant.SessionStatusCreated,
			}
			if err := uow.SessionRepository().Create(ctx, session); err != nil {
				return nil, fmt.Errorf("create session: %w", err)
			}
		case found.OwnerId != ownerId:
			return nil, fmt.Errorf("session %s: %w", *sessionId, apperr.ErrDuplicateSession)
		case found.Status == constant.SessionStatusProcessing:
			return nil, fmt.Errorf("session %s: %w", *sessionId, apperr.ErrAlreadyProcessing)
		default:
			session = found
		}
	} else {
		session = &entity.Session{
			Id:      uuid.New(),
			OwnerId: ownerId,
			Status:  constant.SessionStatusCreated,
		}
		if err := uow.SessionRepository().Create(ctx, session); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	dir := s.sessionDir(session.Id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	resp := &dto.UploadDocumentsResponse{SessionId: session.Id}
	for _, fh := range files {
		filename := filepath.Base(fh.Filename)
		ext := strings.ToLower(filepath.Ext(filename))
		if _, ok := s.allowedExts[ext]; !ok {
			resp.SkippedFiles = append(resp.SkippedFiles, filename)
			continue
		}

		if err := saveMultipartFile(fh, filepath.Join(dir, filename)); err != nil {
			return nil, fmt.Errorf("save %s: %w", filename, err)
		}

		existing, err := uow.SessionFileRepository().FindOne(ctx,
			specification.BySessionID{SessionID: session.Id},
			specification.Filter("filename", filename),
		)
		if err != nil {
			return nil, fmt.Errorf("check existing file: %w", err)
		}

		if existing != nil {
			// Re-upload resets the file for the next processing run.
			existing.State = constant.FileStatePending
			existing.FailReason = nil
			if err := uow.SessionFileRepository().Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("reset file record: %w", err)
			}
		} else {
			record := &entity.SessionFile{
				SessionId: session.Id,
				Filename:  filename,
				State:     constant.FileStatePending,
			}
			if err := uow.SessionFileRepository().Create(ctx, record); err != nil {
				return nil, fmt.Errorf("register file: %w", err)
			}
		}
		resp.FilenamesSaved = append(resp.FilenamesSaved, filename)
	}
	resp.Skipped = len(resp.SkippedFiles)

	// New uploads invalidate a previous Ready state until reprocessed.
	if session.Status == constant.SessionStatusReady && len(resp.FilenamesSaved) > 0 {
		session.Status = constant.SessionStatusCreated
		session.ProcessedAt = nil
		if err := uow.SessionRepository().Update(ctx, session); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
	}
	s.sessionCache.Delete(session.Id)

	s.logger.Info("SessionService", "Documents uploaded", map[string]interface{}{
		"session_id": session.Id.String(),
		"saved":      len(resp.FilenamesSaved),
		"skipped":    resp.Skipped,
	})
	return resp, nil
}

// Process runs the indexing pipeline over the session's pending documents.
// It is synchronous: the response reports which documents made it into the
// index. Concurrent calls for the same session are rejected.
func (s *sessionService) Process(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.ProcessDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.OwnerId != ownerId {
		return nil, apperr.NotFound("session", sessionId)
	}

	acquired, err := s.sessionLock.Acquire(ctx, sessionId, processLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("session %s: %w", sessionId, apperr.ErrAlreadyProcessing)
	}
	defer func() {
		if err := s.sessionLock.Release(context.Background(), sessionId); err != nil {
			s.logger.Warn("SessionService", "Failed to release process lock", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}()

	files, err := uow.SessionFileRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("session %s has no documents: %w", sessionId, apperr.ErrSessionNotReady)
	}

	// Retry re-attempts only pending and failed files; indexed ones stay as
	// they are because re-indexing is idempotent but costly.
	var toIngest []*entity.SessionFile
	for _, f := range files {
		if f.State != constant.FileStateIndexed {
			toIngest = append(toIngest, f)
		}
	}

	session.Status = constant.SessionStatusProcessing
	session.ErrorDetail = nil
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	s.sessionCache.Delete(sessionId)

	report := &ingest.Report{}
	if len(toIngest) > 0 {
		filenames := make([]string, len(toIngest))
		for i, f := range toIngest {
			filenames[i] = f.Filename
		}

		report, err = s.ingestor.Ingest(ctx, sessionId, s.sessionDir(sessionId), filenames)
		if err != nil {
			detail := err.Error()
			session.Status = constant.SessionStatusError
			session.ErrorDetail = &detail
			_ = uow.SessionRepository().Update(context.Background(), session)
			s.sessionCache.Delete(sessionId)
			s.publishLifecycle(constant.EventSessionFailed, sessionId, map[string]interface{}{"error": detail})
			return nil, fmt.Errorf("ingest: %w", err)
		}

		s.applyFileStates(ctx, uow, toIngest, report)
	}

	resp := &dto.ProcessDocumentsResponse{
		SessionId:      sessionId,
		ProcessedFiles: report.Succeeded,
	}
	for _, f := range report.Failed {
		resp.FailedFiles = append(resp.FailedFiles, dto.FailedFileDTO{Filename: f.Filename, Reason: f.Reason})
	}

	now := time.Now()
	if len(report.Failed) == 0 {
		session.Status = constant.SessionStatusReady
		session.ProcessedAt = &now
		resp.Message = fmt.Sprintf("%d document(s) indexed", len(report.Succeeded))
		s.publishLifecycle(constant.EventSessionProcessed, sessionId, map[string]interface{}{
			"processed": len(report.Succeeded),
		})
	} else {
		detail := fmt.Sprintf("%d document(s) failed to index", len(report.Failed))
		session.Status = constant.SessionStatusError
		session.ErrorDetail = &detail
		resp.Message = detail
		s.publishLifecycle(constant.EventSessionFailed, sessionId, map[string]interface{}{
			"error":     detail,
			"processed": len(report.Succeeded),
			"failed":    len(report.Failed),
		})
	}
	resp.Status = session.Status

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}
	s.sessionCache.Delete(sessionId)

	return resp, nil
}

func (s *sessionService) applyFileStates(ctx context.Context, uow unitofwork.UnitOfWork, files []*entity.SessionFile, report *ingest.Report) {
	failed := make(map[string]string, len(report.Failed))
	for _, f := range report.Failed {
		failed[f.Filename] = f.Reason
	}
	succeeded := make(map[string]struct{}, len(report.Succeeded))
	for _, name := range report.Succeeded {
		succeeded[name] = struct{}{}
	}

	for _, f := range files {
		if _, ok := succeeded[f.Filename]; ok {
			f.State = constant.FileStateIndexed
			f.FailReason = nil
		} else if reason, ok := failed[f.Filename]; ok {
			f.State = constant.FileStateFailed
			f.FailReason = &reason
		} else {
			continue
		}
		if err := uow.SessionFileRepository().Update(ctx, f); err != nil {
			s.logger.Warn("SessionService", "Failed to update file state", map[string]interface{}{
				"filename": f.Filename,
				"error":    err.Error(),
			})
		}
	}
}

func (s *sessionService) Status(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.SessionStatusResponse, error) {
	session, cached := s.sessionCache.Get(sessionId)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if !cached {
		found, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if found != nil {
			s.sessionCache.Save(found)
		}
		session = found
	}
	if session == nil || session.OwnerId != ownerId {
		return nil, apperr.NotFound("session", sessionId)
	}

	files, err := uow.SessionFileRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}

	resp := &dto.SessionStatusResponse{
		SessionId:   session.Id,
		Status:      session.Status,
		ErrorDetail: session.ErrorDetail,
		Files:       make([]dto.SessionFileDTO, len(files)),
		CreatedAt:   session.CreatedAt,
		ProcessedAt: session.ProcessedAt,
	}
	for i, f := range files {
		resp.Files[i] = dto.SessionFileDTO{
			Filename:   f.Filename,
			State:      f.State,
			FailReason: f.FailReason,
		}
	}
	return resp, nil
}

// Delete removes the session row, its transcript, insights and files, then
// hands index and disk cleanup to the async consumer.
func (s *sessionService) Delete(ctx context.Context, ownerId, sessionId uuid.UUID) (*dto.DeleteSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.OwnerId != ownerId {
		return nil, apperr.NotFound("session", sessionId)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	turns, err := uow.TurnRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("load turns: %w", err)
	}
	turnIds := make([]uuid.UUID, len(turns))
	for i, t := range turns {
		turnIds[i] = t.Id
	}

	if err := uow.CitationRepository().DeleteByTurnIds(ctx, turnIds); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete citations: %w", err)
	}
	if err := uow.TurnRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete turns: %w", err)
	}
	if err := uow.InsightRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete insights: %w", err)
	}
	if err := uow.SessionFileRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete file records: %w", err)
	}
	if err := uow.SessionRepository().Delete(ctx, sessionId); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("delete session: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.sessionCache.Delete(sessionId)

	// Index and disk cleanup run async; losing the message leaks passages,
	// not correctness, so failures only log.
	payload, _ := json.Marshal(dto.SessionCleanupMessage{SessionId: sessionId})
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.pubSub.Publish(constant.SessionCleanupTopic, msg); err != nil {
		s.logger.Error("SessionService", "Failed to publish cleanup message", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}

	s.publishLifecycle(constant.EventSessionDeleted, sessionId, nil)

	return &dto.DeleteSessionResponse{SessionId: sessionId, Deleted: true}, nil
}

func (s *sessionService) publishLifecycle(eventType string, sessionId uuid.UUID, extra map[string]interface{}) {
	if s.natsPub == nil {
		return
	}

	data := map[string]interface{}{"session_id": sessionId.String()}
	for k, v := range extra {
		data[k] = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.natsPub.Publish(ctx, events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}); err != nil {
		s.logger.Warn("SessionService", "Failed to publish lifecycle event", map[string]interface{}{
			"event":      eventType,
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (s *sessionService) sessionDir(sessionId uuid.UUID) string {
	return filepath.Join(s.uploadDir, sessionId.String())
}

func saveMultipartFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		return err
	}
	return nil
}
