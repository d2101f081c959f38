package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInsightRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Content   string    `json:"content" validate:"required,max=4000"`
}

type InsightResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
