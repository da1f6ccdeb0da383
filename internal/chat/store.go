package chat

import "sync"

// Store is the persistence port for the session id and message history.
// Implementations mirror state only; they never mutate the in-memory
// history. The sqlite-backed implementation lives in internal/database;
// MemoryStore backs tests and storage-degraded operation.
type Store interface {
	// SessionID returns the stored session id, or "" if none is stored.
	SessionID() (string, error)
	SetSessionID(id string) error

	// Messages returns the persisted history for the session in append
	// order, at most limit entries from the end (0 means no limit).
	Messages(sessionID string, limit int) ([]Message, error)

	// SaveMessages replaces the persisted history for the session.
	SaveMessages(sessionID string, msgs []Message) error

	// DeleteHistory removes the persisted history for every session.
	DeleteHistory() error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu        sync.Mutex
	sessionID string
	messages  map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]Message)}
}

func (s *MemoryStore) SessionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID, nil
}

func (s *MemoryStore) SetSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
	return nil
}

func (s *MemoryStore) Messages(sessionID string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) SaveMessages(sessionID string, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]Message, len(msgs))
	copy(stored, msgs)
	s.messages[sessionID] = stored
	return nil
}

func (s *MemoryStore) DeleteHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make(map[string][]Message)
	return nil
}
