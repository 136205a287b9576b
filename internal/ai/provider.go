package ai

import (
	"context"
	"fmt"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the sanitized generation parameters forwarded to a backend.
// Extra holds passthrough keys the server does not interpret.
type Options struct {
	Temperature *float64
	Extra       map[string]any
}

type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// BackendError marks a failure of an external LLM call so callers can map it
// to the right HTTP status without retrying.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
