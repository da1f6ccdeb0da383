package database

import (
	"time"

	"gorm.io/datatypes"
)

// SessionIDKey is the app_state row holding the current session id.
const SessionIDKey = "chat_session_id"

// AppState is a small key/value table for client-side state that is not
// part of the message history.
type AppState struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// ChatMessage is one persisted history entry. Seq preserves append order
// within a session; the full tail is rewritten on every persist, so Seq
// is just the position in the saved slice.
type ChatMessage struct {
	ID        string `gorm:"primaryKey"`
	SessionID string `gorm:"index;not null"`
	Seq       int    `gorm:"not null"`
	Role      string `gorm:"size:10;not null"`
	Content   string
	CreatedAt time.Time

	Sources        datatypes.JSON
	Confidence     *float64
	ResponseTimeMs *int64
	Followups      datatypes.JSON
}
