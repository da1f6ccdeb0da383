package chat

import (
	"time"

	"github.com/google/uuid"

	"tutor-client/pkg/api"
)

const (
	RoleQuestion = "question"
	RoleAnswer   = "answer"
)

// Message is one entry in a chat exchange. Question messages carry only
// content; answer messages additionally carry the metadata returned by
// the backend.
type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time

	Sources             []api.Source
	Confidence          *float64
	ResponseTimeMs      *int64
	FollowUpSuggestions []string
}

func newQuestion(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleQuestion,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func newAnswer(resp *api.ChatResponse) Message {
	content := resp.Answer
	if content == "" {
		content = "No response received"
	}
	return Message{
		ID:                  uuid.NewString(),
		Role:                RoleAnswer,
		Content:             content,
		Timestamp:           time.Now().UTC(),
		Sources:             resp.Sources,
		Confidence:          resp.ConfidenceScore,
		ResponseTimeMs:      resp.ResponseTimeMs,
		FollowUpSuggestions: resp.FollowupSuggestions,
	}
}
