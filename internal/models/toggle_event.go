package models

import (
	"time"

	"gorm.io/gorm"
)

// Outcome values for ToggleEvent
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Action values for ToggleEvent
const (
	ActionToggle  = "toggle"
	ActionEnable  = "enable"
	ActionDisable = "disable"
)

type ToggleEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventID    string         `gorm:"not null;uniqueIndex;size:36" json:"event_id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Action     string         `gorm:"not null;index" json:"action"` // "toggle", "enable" or "disable"
	FromState  string         `gorm:"not null" json:"from_state"`
	ToState    string         `gorm:"not null" json:"to_state"`
	Monitors   string         `gorm:"not null;default:''" json:"monitors"` // Comma separated names addressed
	Outcome    string         `gorm:"not null;index" json:"outcome"`
	Failures   string         `gorm:"not null;default:''" json:"failures,omitempty"`
	DurationMs int64          `gorm:"not null;default:0" json:"duration_ms"`
	Source     string         `gorm:"not null;default:'tray'" json:"source"` // "tray" or "cli"
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type OutcomeSummary struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}

type HistoryReport struct {
	Events      []*ToggleEvent   `json:"events"`
	Outcomes    []OutcomeSummary `json:"outcomes"`
	Total       int64            `json:"total"`
	LastErrors  []*ErrorLog      `json:"last_errors,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}
