package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters rows belonging to a chat session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByTurnID filters citations belonging to a transcript turn
type ByTurnID struct {
	TurnID uuid.UUID
}

func (s ByTurnID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("turn_id = ?", s.TurnID)
}

// BySource filters passages by originating document name
type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}
