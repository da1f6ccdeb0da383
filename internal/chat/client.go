package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"tutor-client/internal/config"
	"tutor-client/pkg/api"
)

const defaultMaxSources = 5

// Client is the chat session client: it owns the session identity, the
// bounded message history and the single in-flight request slot. Starting
// a new Send supersedes any request still in flight; the superseded
// request settles silently without appending a message or surfacing an
// error.
type Client struct {
	cfg      *config.Config
	http     *resty.Client
	sessions *SessionManager
	history  *History

	mu      sync.Mutex
	cancel  context.CancelFunc
	gen     uint64
	sending bool
	lastErr *Error
}

// New builds a client over the given store and hydrates the history for
// the current session.
func New(cfg *config.Config, store Store) *Client {
	sessions := NewSessionManager(store)
	history := NewHistory(store, sessions, cfg.MaxMessageHistory)
	history.Load()

	return &Client{
		cfg:      cfg,
		http:     resty.New().SetBaseURL(cfg.BaseURL),
		sessions: sessions,
		history:  history,
	}
}

// Send issues one question to the backend and appends the resulting
// answer to the history. Empty input (after trimming) returns
// ErrEmptyQuestion and does nothing. A superseded or cancelled request
// returns (nil, nil). Network and HTTP failures are recorded as the
// retryable error state and returned.
func (c *Client) Send(ctx context.Context, question string) (*Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if max := c.cfg.MaxMessageLength; utf8.RuneCountInString(question) > max {
		return nil, validationErrorf("Message is too long (maximum %d characters).", max)
	}

	c.mu.Lock()
	if c.cancel != nil {
		// Supersede the in-flight request. Its response is discarded when
		// it observes the bumped generation.
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	c.cancel = cancel
	c.sending = true
	c.lastErr = nil
	c.mu.Unlock()

	c.history.Append(newQuestion(question))

	payload := api.ChatRequest{
		SessionID: c.sessions.GetOrCreate(),
		Question:  question,
		Context: api.RequestContext{
			MaxSources:      defaultMaxSources,
			IncludeMetadata: true,
		},
	}

	res, err := c.http.R().
		SetContext(reqCtx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/chat")

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Superseded; a newer Send owns the client state now.
		return nil, nil
	}

	c.sending = false
	c.cancel = nil
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) || reqCtx.Err() == context.Canceled {
			// Cancelled via CancelAll: settle silently.
			return nil, nil
		}
		var cerr *Error
		if errors.Is(err, context.DeadlineExceeded) {
			cerr = timeoutError(err)
		} else {
			cerr = networkError(err)
		}
		slog.Error("chat request failed", "error", err)
		c.lastErr = cerr
		return nil, cerr
	}

	if !res.IsSuccess() {
		cerr := httpError(res.StatusCode(), http.StatusText(res.StatusCode()), parseErrorBody(res.Body()))
		slog.Error("chat request rejected", "status_code", res.StatusCode(), "message", cerr.Message)
		c.lastErr = cerr
		return nil, cerr
	}

	var body api.ChatResponse
	if uerr := json.Unmarshal(res.Body(), &body); uerr != nil {
		cerr := httpError(res.StatusCode(), http.StatusText(res.StatusCode()), "Received an unreadable response. Please try again.")
		slog.Error("error parsing chat response", "error", uerr)
		c.lastErr = cerr
		return nil, cerr
	}

	if body.SessionID != "" && body.SessionID != payload.SessionID {
		c.sessions.Replace(body.SessionID)
	}

	answer := newAnswer(&body)
	c.history.Append(answer)
	return &answer, nil
}

// RetryLast re-issues the most recent question. A trailing answer, or the
// question itself when the exchange failed, is removed first so a
// successful retry appends exactly one new answer with no duplicate
// question. No-op when there is no prior question.
func (c *Client) RetryLast(ctx context.Context) (*Message, error) {
	msgs := c.history.Messages()
	if len(msgs) == 0 {
		return nil, nil
	}

	var lastQuestion *Message
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleQuestion {
			lastQuestion = &msgs[i]
			break
		}
	}
	if lastQuestion == nil {
		return nil, nil
	}

	c.mu.Lock()
	failed := c.lastErr != nil
	c.mu.Unlock()

	if last := msgs[len(msgs)-1]; last.Role == RoleAnswer || failed {
		c.history.removeLast()
	}

	return c.Send(ctx, lastQuestion.Content)
}

// CancelAll aborts any in-flight request without surfacing an error.
// Invoked on teardown.
func (c *Client) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.sending = false
}

// ClearHistory empties the message list, removes all persisted history
// and starts a fresh session.
func (c *Client) ClearHistory() {
	c.history.Clear()
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// Messages returns a snapshot of the message list.
func (c *Client) Messages() []Message {
	return c.history.Messages()
}

// Err returns the current retryable error state, or nil.
func (c *Client) Err() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sending reports whether a request is in flight.
func (c *Client) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// SessionID returns the current session id, creating one if needed.
func (c *Client) SessionID() string {
	return c.sessions.GetOrCreate()
}

// parseErrorBody extracts the error message from a non-2xx body. Any
// parse failure falls back to the synthesized "HTTP <status>" message.
func parseErrorBody(body []byte) string {
	var parsed api.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
