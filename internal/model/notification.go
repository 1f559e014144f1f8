package model

import "time"

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient toast surfaced to the user. Every toast is
// also kept in the local notification log.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Level is the severity shown in the status bar.
	Level Level `json:"level" db:"level"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
