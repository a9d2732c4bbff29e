package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionRecord stores the raw submitted session verbatim.
type SessionRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string         `gorm:"index;not null" json:"sessionId"`
	UserID    string         `gorm:"index" json:"userId"`
	GameType  GameType       `gorm:"index" json:"gameType"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

// ReportRecord stores an assembled report. Body is written once; the narrative
// columns are siblings filled in later and never touch Body.
type ReportRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID        string         `gorm:"uniqueIndex;not null" json:"reportId"`
	SessionID       string         `gorm:"index;not null" json:"sessionId"`
	UserID          string         `gorm:"index" json:"userId"`
	GameType        GameType       `gorm:"index" json:"gameType"`
	HighestRisk     RiskLevel      `json:"highestRisk"`
	Body            datatypes.JSON `gorm:"type:jsonb" json:"body"`
	AIReport        datatypes.JSON `gorm:"type:jsonb" json:"aiReport,omitempty"`
	AINarrative     string         `json:"aiNarrative,omitempty"`
	NarrativeSource string         `json:"narrativeSource,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// ReportView is the API shape of a stored report: the immutable report plus
// the narrative sibling fields.
type ReportView struct {
	Report          *Report        `json:"report"`
	AIReport        datatypes.JSON `json:"aiReport,omitempty"`
	AINarrative     string         `json:"aiNarrative,omitempty"`
	NarrativeSource string         `json:"narrativeSource,omitempty"`
}
