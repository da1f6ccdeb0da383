package chat

import (
	"log/slog"
	"sync"
)

// History is the ordered list of exchanged messages, bounded by the
// retention limit and mirrored to the store on every mutation. Persisted
// state is always a suffix of the full in-memory history; entries beyond
// the cap are dropped on persist.
type History struct {
	mu       sync.Mutex
	store    Store
	sessions *SessionManager
	limit    int
	messages []Message
}

func NewHistory(store Store, sessions *SessionManager, limit int) *History {
	return &History{store: store, sessions: sessions, limit: limit}
}

// Load hydrates the in-memory list from the persisted history of the
// current session, truncated to the most recent limit entries.
func (h *History) Load() {
	sessionID := h.sessions.GetOrCreate()

	h.mu.Lock()
	defer h.mu.Unlock()

	msgs, err := h.store.Messages(sessionID, h.limit)
	if err != nil {
		slog.Warn("error loading saved messages", "session_id", sessionID, "error", err)
		return
	}
	h.messages = msgs
}

// Append adds a message to the end of the list and persists the
// truncated tail.
func (h *History) Append(msg Message) {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()
	h.persist()
}

// Clear empties the list, removes all persisted history and rotates the
// session id.
func (h *History) Clear() {
	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()

	if err := h.store.DeleteHistory(); err != nil {
		slog.Warn("error clearing saved messages", "error", err)
	}
	h.sessions.Rotate()
}

// Messages returns a copy of the current list.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// removeLast drops the trailing message, if any. Used by retry to strip
// a stale answer before re-sending.
func (h *History) removeLast() {
	h.mu.Lock()
	if n := len(h.messages); n > 0 {
		h.messages = h.messages[:n-1]
	}
	h.mu.Unlock()
	h.persist()
}

func (h *History) persist() {
	sessionID := h.sessions.GetOrCreate()

	h.mu.Lock()
	tail := h.messages
	if h.limit > 0 && len(tail) > h.limit {
		tail = tail[len(tail)-h.limit:]
	}
	msgs := make([]Message, len(tail))
	copy(msgs, tail)
	h.mu.Unlock()

	if err := h.store.SaveMessages(sessionID, msgs); err != nil {
		slog.Warn("error saving messages", "session_id", sessionID, "error", err)
	}
}
