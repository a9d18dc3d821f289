package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// CompletionRequest is one system + user exchange with a chat model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
}

// Completer sends a single completion request and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrNotConfigured is returned by PlaceholderClient.
var ErrNotConfigured = errors.New("llm provider not configured")

// ServiceError wraps every failure of the remote model call.
type ServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Temporary reports whether repeating the whole request may succeed.
func (e *ServiceError) Temporary() bool {
	switch {
	case errors.Is(e.Err, ErrNotConfigured):
		return false
	case errors.Is(e.Err, context.Canceled):
		return false
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return true
	case e.StatusCode == 0:
		return true
	default:
		return false
	}
}

// PlaceholderClient fails every call; used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", &ServiceError{Op: "complete", Err: ErrNotConfigured}
}
