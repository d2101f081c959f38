package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"docrag-be/internal/constant"
	"docrag-be/internal/dto"
	"docrag-be/internal/pkg/logger"
	"docrag-be/pkg/rag/retrieve"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ICleanupService interface {
	Consume(ctx context.Context) error
}

// cleanupService drains the session cleanup topic: it purges the deleted
// session's passages from the index and removes its uploaded files. All
// failures are best-effort - the session row is already gone.
type cleanupService struct {
	pubSub    *gochannel.GoChannel
	retriever retrieve.Retriever
	logger    logger.ILogger
	uploadDir string
}

func NewCleanupService(pubSub *gochannel.GoChannel, retriever retrieve.Retriever, log logger.ILogger, uploadDir string) ICleanupService {
	return &cleanupService{
		pubSub:    pubSub,
		retriever: retriever,
		logger:    log,
		uploadDir: uploadDir,
	}
}

func (cs *cleanupService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, constant.SessionCleanupTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *cleanupService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SessionCleanupMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CleanupService", "Failed to unmarshal cleanup message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := cs.retriever.Purge(ctx, payload.SessionId); err != nil {
		cs.logger.Error("CleanupService", "Failed to purge session index", map[string]interface{}{
			"session_id": payload.SessionId.String(),
			"error":      err.Error(),
		})
		msg.Nack() // Retriable
		return
	}

	dir := filepath.Join(cs.uploadDir, payload.SessionId.String())
	if err := os.RemoveAll(dir); err != nil {
		cs.logger.Warn("CleanupService", "Failed to remove uploaded files", map[string]interface{}{
			"session_id": payload.SessionId.String(),
			"error":      err.Error(),
		})
		// Disk leftovers are harmless; do not retry the whole message.
	}

	cs.logger.Info("CleanupService", "Session cleanup complete", map[string]interface{}{
		"session_id": payload.SessionId.String(),
	})
	msg.Ack()
}
