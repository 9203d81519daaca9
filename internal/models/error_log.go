package models

import (
	"time"
)

// ErrorLog is an error that was shown to the user as a notification
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Kind      string    `gorm:"not null;default:'';index" json:"kind"` // "settings", "scan", "toggle", "device", "startup"
	Title     string    `gorm:"not null;default:''" json:"title"`      // Notification title
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
