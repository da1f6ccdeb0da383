package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tutor-client/pkg/api"
)

// ChatService is a stand-in for the curriculum Q&A backend: it serves the
// widget's /chat contract from a canned corpus. Useful for local
// development and for integration-testing the client against a real HTTP
// server.
type ChatService struct {
	mu        sync.Mutex
	exchanges map[string][]api.HistoryItem
}

func NewChatService() *ChatService {
	return &ChatService{exchanges: make(map[string][]api.HistoryItem)}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/chat", RestHandler(s.Chat))
	r.Get("/chat/history", RestHandler(s.History))
}

func (s *ChatService) Chat(r *http.Request) (any, error) {
	start := time.Now()

	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Question) == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "question must not be empty")
	}

	// The session id is server-authoritative: echo the client's id when
	// present, otherwise issue a fresh one.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
	}

	entry, _ := lookupAnswer(req.Question)

	resp := api.ChatResponse{
		Answer:               entry.answer,
		ConfidenceScore:      &entry.confidence,
		SessionID:            sessionID,
		SelectedTextProvided: req.Context.SelectedText != "",
	}
	if req.Context.MaxSources > 0 && len(entry.sources) > req.Context.MaxSources {
		resp.Sources = entry.sources[:req.Context.MaxSources]
	} else {
		resp.Sources = entry.sources
	}
	if req.Context.IncludeMetadata {
		resp.FollowupSuggestions = entry.followups
		elapsed := time.Since(start).Milliseconds()
		resp.ResponseTimeMs = &elapsed
	}

	s.record(sessionID, req.Question, entry.answer)

	return resp, nil
}

type historyQuery struct {
	SessionID string `schema:"session_id,required"`
	Limit     int    `schema:"limit"`
}

func (s *ChatService) History(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[historyQuery](r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	items := s.exchanges[query.SessionID]
	if query.Limit > 0 && len(items) > query.Limit {
		items = items[len(items)-query.Limit:]
	}
	out := make([]api.HistoryItem, len(items))
	copy(out, items)
	s.mu.Unlock()

	return api.HistoryResponse{SessionID: query.SessionID, Messages: out}, nil
}

func (s *ChatService) record(sessionID, question, answer string) {
	now := time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges[sessionID] = append(s.exchanges[sessionID],
		api.HistoryItem{Role: "question", Content: question, Timestamp: now},
		api.HistoryItem{Role: "answer", Content: answer, Timestamp: now},
	)
}
