package entity

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one message in a session's conversation history. Seq is a
// per-session monotonic sequence assigned at insert; ordering by Seq is
// authoritative, timestamps are informational only.
type Turn struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	Role       string
	Content    string
	Seq        int
	Incomplete bool
	CreatedAt  time.Time
}

// TurnCitation references the passage a citation was derived from.
// Page is zero-based here; display conversion happens at the edge.
type TurnCitation struct {
	Id      uuid.UUID
	TurnId  uuid.UUID
	Source  string
	Page    *int
	Snippet string
	Rank    int
}
