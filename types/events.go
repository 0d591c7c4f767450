package types

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type EventType string

const CategoryFeedback = "FEEDBACK"

const (
	EventTypeFeedbackCreated       EventType = CategoryFeedback + "_CREATED"
	EventTypeFeedbackStatusUpdated EventType = CategoryFeedback + "_STATUS_UPDATED"
	EventTypeFeedbackDeleted       EventType = CategoryFeedback + "_DELETED"
)

// Event is the envelope published for every feedback mutation.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	FeedbackID string          `json:"feedbackId"`
	Timestamp  time.Time       `json:"timestamp"`
	Version    int             `json:"version"`
	Source     string          `json:"source,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the fields every subscriber relies on.
func (e Event) Validate() error {
	if e.Type == "" {
		return errors.New("event type is required")
	}
	if e.FeedbackID == "" {
		return errors.New("feedback id is required")
	}
	return nil
}

// EventPublisher delivers feedback events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
