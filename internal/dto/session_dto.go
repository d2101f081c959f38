package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentsResponse struct {
	SessionId      uuid.UUID `json:"session_id"`
	FilenamesSaved []string  `json:"filenames_saved"`
	Skipped        int       `json:"skipped"`
	SkippedFiles   []string  `json:"skipped_files,omitempty"`
}

type ProcessDocumentsRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}

type ProcessDocumentsResponse struct {
	SessionId      uuid.UUID       `json:"session_id"`
	Status         string          `json:"status"`
	ProcessedFiles []string        `json:"processed_files"`
	FailedFiles    []FailedFileDTO `json:"failed_files,omitempty"`
	Message        string          `json:"message"`
}

type FailedFileDTO struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type SessionStatusResponse struct {
	SessionId   uuid.UUID        `json:"session_id"`
	Status      string           `json:"status"`
	ErrorDetail *string          `json:"error_detail,omitempty"`
	Files       []SessionFileDTO `json:"files"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}

type SessionFileDTO struct {
	Filename   string  `json:"filename"`
	State      string  `json:"state"`
	FailReason *string `json:"fail_reason,omitempty"`
}

// SessionCleanupMessage is the payload of the async cleanup topic.
type SessionCleanupMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

type DeleteSessionResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Deleted   bool      `json:"deleted"`
}
