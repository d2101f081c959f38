package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"docrag-be/internal/entity"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/embedding"
	"docrag-be/pkg/utils"

	"github.com/google/uuid"
)

// FileResult records why a document could not be indexed.
type FileResult struct {
	Filename string
	Reason   string
}

// Report summarizes one indexing run over a session's uploads.
type Report struct {
	Succeeded []string
	Failed    []FileResult
}

// Ingestor turns uploaded documents into embedded passages in the session's
// namespace.
type Ingestor interface {
	Ingest(ctx context.Context, sessionId uuid.UUID, dir string, filenames []string) (*Report, error)
}

type ingestor struct {
	uowFactory   unitofwork.RepositoryFactory
	embedder     embedding.EmbeddingProvider
	logger       logger.ILogger
	chunkSize    int
	chunkOverlap int
}

func NewIngestor(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, log logger.ILogger, chunkSize, chunkOverlap int) Ingestor {
	return &ingestor{
		uowFactory:   uowFactory,
		embedder:     embedder,
		logger:       log,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes each file independently: one unreadable document fails
// that document only, never the whole batch.
func (ing *ingestor) Ingest(ctx context.Context, sessionId uuid.UUID, dir string, filenames []string) (*Report, error) {
	report := &Report{}

	for _, filename := range filenames {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := ing.ingestFile(ctx, sessionId, dir, filename); err != nil {
			ing.logger.Warn("Ingestor", "Document failed to index", map[string]interface{}{
				"session_id": sessionId.String(),
				"filename":   filename,
				"error":      err.Error(),
			})
			report.Failed = append(report.Failed, FileResult{Filename: filename, Reason: err.Error()})
			continue
		}
		report.Succeeded = append(report.Succeeded, filename)
	}

	return report, nil
}

func (ing *ingestor) ingestFile(ctx context.Context, sessionId uuid.UUID, dir, filename string) error {
	sections, err := Extract(filepath.Join(dir, filename))
	if err != nil {
		return err
	}

	var passages []*entity.Passage
	chunkIndex := 0
	for _, section := range sections {
		for _, chunk := range utils.SplitText(section.Text, ing.chunkSize, ing.chunkOverlap) {
			resp, err := ing.embedder.Generate(chunk, "retrieval_document")
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunkIndex, err)
			}
			passages = append(passages, &entity.Passage{
				SessionId:  sessionId,
				Source:     filename,
				Page:       section.Page,
				ChunkIndex: chunkIndex,
				Content:    chunk,
				Embedding:  resp.Embedding.Values,
			})
			chunkIndex++
		}
	}

	// Replace any previous index of this document so re-processing stays
	// idempotent per (session, source).
	uow := ing.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := uow.PassageRepository().DeleteBySource(ctx, sessionId, filename); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("clear previous passages: %w", err)
	}
	if err := uow.PassageRepository().CreateBulk(ctx, passages); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("store passages: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	ing.logger.Info("Ingestor", "Document indexed", map[string]interface{}{
		"session_id": sessionId.String(),
		"filename":   filename,
		"passages":   len(passages),
	})
	return nil
}
