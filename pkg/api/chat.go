package api

// RequestContext carries the retrieval hints sent with every question.
type RequestContext struct {
	MaxSources      int    `json:"max_sources"`
	IncludeMetadata bool   `json:"include_metadata"`
	SelectedText    string `json:"selected_text,omitempty"`
}

type ChatRequest struct {
	SessionID string         `json:"session_id"`
	Question  string         `json:"question"`
	Context   RequestContext `json:"context"`
}

// Source is a citation attached to an answer. All fields are optional on
// the wire; use DisplayTitle for rendering.
type Source struct {
	Title          string  `json:"title,omitempty"`
	Chapter        string  `json:"chapter,omitempty"`
	Section        string  `json:"section,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	Snippet        string  `json:"snippet,omitempty"`
	URL            string  `json:"url,omitempty"`
}

// DisplayTitle returns the best available label for a citation, falling
// back to chapter then section so a source always renders with a title.
func (s Source) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	if s.Chapter != "" {
		return s.Chapter
	}
	if s.Section != "" {
		return s.Section
	}
	return "Untitled source"
}

type ChatResponse struct {
	Answer               string   `json:"answer"`
	Sources              []Source `json:"sources,omitempty"`
	ConfidenceScore      *float64 `json:"confidence_score,omitempty"`
	ResponseTimeMs       *int64   `json:"response_time_ms,omitempty"`
	FollowupSuggestions  []string `json:"followup_suggestions,omitempty"`
	SessionID            string   `json:"session_id,omitempty"`
	SelectedTextProvided bool     `json:"selected_text_provided,omitempty"`
}

// ErrorResponse is the best-effort body of a non-2xx reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

type HistoryItem struct {
	Role      string `json:"role"` // "question" or "answer"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []HistoryItem `json:"messages"`
}
