package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Query     string    `json:"query" validate:"required"`
}

type ChatHistoryResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Turns     []TurnDTO `json:"turns"`
}

type TurnDTO struct {
	Id         uuid.UUID     `json:"id"`
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Incomplete bool          `json:"incomplete,omitempty"`
	Citations  []CitationDTO `json:"citations,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CitationDTO carries a one-based page for display; Page is null for
// sources without page structure.
type CitationDTO struct {
	Source         string `json:"source"`
	Page           *int   `json:"page"`
	ContentSnippet string `json:"content_snippet"`
}
