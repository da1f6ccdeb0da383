package chat

import (
	"errors"
	"fmt"
)

// Kind classifies a chat error. Only KindNetwork and KindHTTP surface to
// the presentation layer as a retryable error state; the rest are either
// returned for local handling (validation) or absorbed where they occur
// (storage, cancellation).
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindHTTP       Kind = "http"
	KindCancelled  Kind = "cancelled"
	KindStorage    Kind = "storage"
)

// ErrEmptyQuestion is returned by Send for input that is empty after
// trimming. Callers treat it as a no-op rather than a user-facing error.
var ErrEmptyQuestion = errors.New("question is empty")

// Error is the error state exposed by the client. CanRetry reports
// whether RetryLast would re-issue the failed exchange.
type Error struct {
	Kind     Kind
	Message  string
	CanRetry bool
	Status   int // HTTP status for KindHTTP, zero otherwise
	err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func networkError(err error) *Error {
	return &Error{
		Kind:     KindNetwork,
		Message:  "Network error. Please check your connection and try again.",
		CanRetry: true,
		err:      err,
	}
}

func timeoutError(err error) *Error {
	return &Error{
		Kind:     KindNetwork,
		Message:  "The request timed out. Please try again.",
		CanRetry: true,
		err:      err,
	}
}

func httpError(status int, statusText, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, statusText)
	}
	return &Error{
		Kind:     KindHTTP,
		Message:  message,
		CanRetry: true,
		Status:   status,
	}
}

func validationErrorf(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
		err:     fmt.Errorf(format, args...),
	}
}

// AsError extracts the client error state from an error returned by Send
// or RetryLast, if any.
func AsError(err error) (*Error, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}
