// Package llm wraps the remote text-generation providers behind one Client
// interface so the chat endpoint does not depend on a particular SDK.
package llm

import (
	"context"
	"errors"
)

// Roles understood by every provider. Providers translate them to their own
// vocabulary (Gemini calls the assistant "model").
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrProvider wraps every failure reported by, or on the way to, a remote provider.
	ErrProvider = errors.New("remote provider error")

	// ErrNotConfigured is returned when the provider has no credential.
	ErrNotConfigured = errors.New("provider not configured")
)

type Message struct {
	Role    string
	Content string
}

// Response carries the first text part of the first candidate. Content is
// empty when the provider returned no text.
type Response struct {
	Content string
	Model   string
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
