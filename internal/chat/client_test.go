package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-client/internal/config"
	"tutor-client/pkg/api"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		MaxMessageLength:  1000,
		MaxMessageHistory: 100,
	}
}

func writeAnswer(w http.ResponseWriter, resp api.ChatResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestSendAppendsQuestionAndAnswer(t *testing.T) {
	confidence := 0.9
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is ROS 2?", req.Question)
		assert.Equal(t, 5, req.Context.MaxSources)
		assert.True(t, req.Context.IncludeMetadata)
		assert.NotEmpty(t, req.SessionID)

		writeAnswer(w, api.ChatResponse{Answer: "ROS 2 is...", ConfidenceScore: &confidence})
	}))
	defer server.Close()

	client := New(testConfig(server.URL), NewMemoryStore())

	answer, err := client.Send(context.Background(), "What is ROS 2?")
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, "ROS 2 is...", answer.Content)
	require.NotNil(t, answer.Confidence)
	assert.Equal(t, 0.9, *answer.Confidence)

	msgs := client.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleQuestion, msgs[0].Role)
	assert.Equal(t, "What is ROS 2?", msgs[0].Content)
	assert.Equal(t, RoleAnswer, msgs[1].Role)
	assert.Nil(t, client.Err())
	assert.False(t, client.Sending())
}

func TestSendEmptyQuestionIsNoOp(t *testing.T) {
	client := New(testConfig("http://localhost:0"), NewMemoryStore())

	_, err := client.Send(context.Background(), "   \t  ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, client.Messages())
	assert.Nil(t, client.Err())
}

func TestSendRejectsOverlongQuestion(t *testing.T) {
	cfg := testConfig("http://localhost:0")
	cfg.MaxMessageLength = 10
	client := New(cfg, NewMemoryStore())

	_, err := client.Send(context.Background(), strings.Repeat("x", 11))
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, cerr.Kind)
	assert.False(t, cerr.CanRetry)

	// Never sent, never appended, not surfaced as retryable state.
	assert.Empty(t, client.Messages())
	assert.Nil(t, client.Err())
}

func TestSendSurfacesHTTPErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), NewMemoryStore())

	_, err := client.Send(context.Background(), "anything")
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, cerr.Kind)
	assert.Equal(t, "overloaded", cerr.Message)
	assert.True(t, cerr.CanRetry)
	assert.Equal(t, http.StatusInternalServerError, cerr.Status)

	// No answer appended for the failed attempt.
	msgs := client.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleQuestion, msgs[0].Role)

	require.NotNil(t, client.Err())
	assert.Equal(t, "overloaded", client.Err().Message)
}

func TestSendFallsBackToStatusMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not json", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), NewMemoryStore())

	_, err := client.Send(context.Background(), "anything")
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, cerr.Kind)
	assert.Contains(t, cerr.Message, "HTTP 502")
	assert.True(t, cerr.CanRetry)
}

func TestSendClassifiesTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := New(testConfig(server.URL), NewMemoryStore())

	_, err := client.Send(context.Background(), "anything")
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, cerr.Kind)
	assert.True(t, cerr.CanRetry)
	assert.Contains(t, cerr.Message, "connection")
}

func TestSendTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := New(cfg, NewMemoryStore())

	_, err := client.Send(context.Background(), "slow question")
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, cerr.Kind)
	assert.True(t, cerr.CanRetry)
}

func TestSendSupersedesInFlightRequest(t *testing.T) {
	aStarted := make(chan struct{})
	releaseA := make(chan struct{})
	var releaseOnce sync.Once
	release := func() { releaseOnce.Do(func() { close(releaseA) }) }

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Question == "a" {
			close(aStarted)
			<-releaseA
			writeAnswer(w, api.ChatResponse{Answer: "answer a"})
			return
		}
		writeAnswer(w, api.ChatResponse{Answer: "answer b"})
	}))
	t.Cleanup(server.Close)
	t.Cleanup(release)

	client := New(testConfig(server.URL), NewMemoryStore())

	var aMsg *Message
	var aErr error
	done := make(chan struct{})
	go func() {
		aMsg, aErr = client.Send(context.Background(), "a")
		close(done)
	}()

	<-aStarted
	bMsg, bErr := client.Send(context.Background(), "b")
	release()
	<-done

	// The superseded request settles silently.
	assert.NoError(t, aErr)
	assert.Nil(t, aMsg)

	require.NoError(t, bErr)
	require.NotNil(t, bMsg)
	assert.Equal(t, "answer b", bMsg.Content)

	contents := []string{}
	for _, msg := range client.Messages() {
		contents = append(contents, msg.Role+":"+msg.Content)
	}
	assert.Equal(t, []string{"question:a", "question:b", "answer:answer b"}, contents)
	assert.Nil(t, client.Err())
}

func TestCancelAllSettlesSilently(t *testing.T) {
	started := make(chan struct{})
	releaseCh := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(releaseCh) }) }

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-releaseCh
		writeAnswer(w, api.ChatResponse{Answer: "too late"})
	}))
	t.Cleanup(server.Close)
	t.Cleanup(release)

	client := New(testConfig(server.URL), NewMemoryStore())

	done := make(chan struct{})
	var msg *Message
	var err error
	go func() {
		msg, err = client.Send(context.Background(), "question")
		close(done)
	}()

	<-started
	client.CancelAll()
	release()
	<-done

	assert.NoError(t, err)
	assert.Nil(t, msg)
	assert.Nil(t, client.Err())
	assert.False(t, client.Sending())

	// The optimistic question stays; the late answer is discarded.
	msgs := client.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleQuestion, msgs[0].Role)
}

func TestRetryLastAfterFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		var req api.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "What is ROS 2?", req.Question)
		writeAnswer(w, api.ChatResponse{Answer: "ROS 2 is..."})
	}))
	defer server.Close()

	client := New(testConfig(server.URL), NewMemoryStore())

	_, err := client.Send(context.Background(), "What is ROS 2?")
	require.Error(t, err)
	require.NotNil(t, client.Err())

	answer, err := client.RetryLast(context.Background())
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, "ROS 2 is...", answer.Content)

	// Exactly one question and one answer; no duplicate question.
	msgs := client.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleQuestion, msgs[0].Role)
	assert.Equal(t, "What is ROS 2?", msgs[0].Content)
	assert.Equal(t, RoleAnswer, msgs[1].Role)
	assert.Nil(t, client.Err())
}

func TestRetryLastWithoutHistoryIsNoOp(t *testing.T) {
	client := New(testConfig("http://localhost:0"), NewMemoryStore())

	msg, err := client.RetryLast(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestSendAdoptsServerIssuedSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAnswer(w, api.ChatResponse{Answer: "hi", SessionID: "session_server_issued"})
	}))
	defer server.Close()

	store := NewMemoryStore()
	client := New(testConfig(server.URL), store)
	original := client.SessionID()

	_, err := client.Send(context.Background(), "hello")
	require.NoError(t, err)

	assert.NotEqual(t, original, client.SessionID())
	assert.Equal(t, "session_server_issued", client.SessionID())

	stored, err := store.SessionID()
	require.NoError(t, err)
	assert.Equal(t, "session_server_issued", stored)
}

func TestClearHistoryResetsStateAndSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAnswer(w, api.ChatResponse{Answer: "hi"})
	}))
	defer server.Close()

	store := NewMemoryStore()
	client := New(testConfig(server.URL), store)

	_, err := client.Send(context.Background(), "hello")
	require.NoError(t, err)
	oldSession := client.SessionID()

	client.ClearHistory()

	assert.Empty(t, client.Messages())
	assert.Nil(t, client.Err())
	assert.NotEqual(t, oldSession, client.SessionID())

	saved, err := store.Messages(oldSession, 0)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestNewHydratesPersistedHistory(t *testing.T) {
	store := NewMemoryStore()
	first := New(testConfig("http://localhost:0"), store)
	first.history.Append(newQuestion("persisted question"))
	sessionID := first.SessionID()

	second := New(testConfig("http://localhost:0"), store)
	msgs := second.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "persisted question", msgs[0].Content)
	assert.Equal(t, sessionID, second.SessionID())
}
