package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionManager owns the current session id. The id is created lazily,
// persisted through the store, and replaced when the backend issues a
// different one. Storage failures degrade to an in-memory-only id; they
// are logged but never returned to callers.
type SessionManager struct {
	mu    sync.Mutex
	store Store
	id    string
}

func NewSessionManager(store Store) *SessionManager {
	return &SessionManager{store: store}
}

// GetOrCreate returns the current session id, reading the stored one or
// generating and persisting a fresh id if none exists.
func (m *SessionManager) GetOrCreate() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.id != "" {
		return m.id
	}

	stored, err := m.store.SessionID()
	if err != nil {
		slog.Warn("error reading stored session id, continuing in memory", "error", err)
	}
	if stored != "" {
		m.id = stored
		return m.id
	}

	m.id = newSessionID()
	if err := m.store.SetSessionID(m.id); err != nil {
		slog.Warn("error persisting session id, continuing in memory", "error", err)
	}
	return m.id
}

// Replace overwrites the current id with a server-issued one.
func (m *SessionManager) Replace(newID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.id = newID
	if err := m.store.SetSessionID(newID); err != nil {
		slog.Warn("error persisting replaced session id, continuing in memory", "error", err)
	}
}

// Rotate discards the current id and issues a fresh one. Used when the
// history is cleared.
func (m *SessionManager) Rotate() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.id = newSessionID()
	if err := m.store.SetSessionID(m.id); err != nil {
		slog.Warn("error persisting rotated session id, continuing in memory", "error", err)
	}
	return m.id
}

// Current returns the id without creating one. Empty until first use.
func (m *SessionManager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func newSessionID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
