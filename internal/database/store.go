package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutor-client/internal/chat"
	"tutor-client/pkg/api"
)

// Store is the sqlite-backed persistence port for the chat client.
// SQLite only supports one writer at a time, so writes are serialized
// behind a mutex.
type Store struct {
	mu sync.Mutex
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SessionID() (string, error) {
	var state AppState
	err := s.db.First(&state, "key = ?", SessionIDKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading session id: %w", err)
	}
	return state.Value, nil
}

func (s *Store) SetSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&AppState{Key: SessionIDKey, Value: id}).Error
	if err != nil {
		return fmt.Errorf("error saving session id: %w", err)
	}
	return nil
}

func (s *Store) Messages(sessionID string, limit int) ([]chat.Message, error) {
	var rows []ChatMessage
	err := s.db.Where("session_id = ?", sessionID).Order("seq ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading messages: %w", err)
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := rowToMessage(row)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *Store) SaveMessages(sessionID string, msgs []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]ChatMessage, 0, len(msgs))
	for i, msg := range msgs {
		row, err := messageToRow(sessionID, i, msg)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	// The persisted history is the truncated tail of the in-memory list,
	// so replace the session's rows wholesale.
	return s.db.Transaction(func(txn *gorm.DB) error {
		if err := txn.Delete(&ChatMessage{}, "session_id = ?", sessionID).Error; err != nil {
			return fmt.Errorf("error clearing session messages: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := txn.Create(&rows).Error; err != nil {
			return fmt.Errorf("error saving messages: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("1 = 1").Delete(&ChatMessage{}).Error; err != nil {
		return fmt.Errorf("error deleting history: %w", err)
	}
	return nil
}

func messageToRow(sessionID string, seq int, msg chat.Message) (ChatMessage, error) {
	row := ChatMessage{
		ID:             msg.ID,
		SessionID:      sessionID,
		Seq:            seq,
		Role:           msg.Role,
		Content:        msg.Content,
		CreatedAt:      msg.Timestamp,
		Confidence:     msg.Confidence,
		ResponseTimeMs: msg.ResponseTimeMs,
	}

	if len(msg.Sources) > 0 {
		b, err := json.Marshal(msg.Sources)
		if err != nil {
			return ChatMessage{}, fmt.Errorf("could not marshal sources: %w", err)
		}
		row.Sources = datatypes.JSON(b)
	}
	if len(msg.FollowUpSuggestions) > 0 {
		b, err := json.Marshal(msg.FollowUpSuggestions)
		if err != nil {
			return ChatMessage{}, fmt.Errorf("could not marshal followups: %w", err)
		}
		row.Followups = datatypes.JSON(b)
	}

	return row, nil
}

func rowToMessage(row ChatMessage) (chat.Message, error) {
	msg := chat.Message{
		ID:             row.ID,
		Role:           row.Role,
		Content:        row.Content,
		Timestamp:      row.CreatedAt,
		Confidence:     row.Confidence,
		ResponseTimeMs: row.ResponseTimeMs,
	}

	if len(row.Sources) > 0 {
		var sources []api.Source
		if err := json.Unmarshal(row.Sources, &sources); err != nil {
			return chat.Message{}, fmt.Errorf("could not unmarshal sources: %w", err)
		}
		msg.Sources = sources
	}
	if len(row.Followups) > 0 {
		var followups []string
		if err := json.Unmarshal(row.Followups, &followups); err != nil {
			return chat.Message{}, fmt.Errorf("could not unmarshal followups: %w", err)
		}
		msg.FollowUpSuggestions = followups
	}

	return msg, nil
}
