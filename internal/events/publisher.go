package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/google/uuid"
)

// SourceFeedbackService identifies events emitted by the feedback API.
const SourceFeedbackService = "feedback-service"

// NewFeedbackEvent builds the envelope for a mutation of fb, carrying fb as
// the payload.
func NewFeedbackEvent(eventType types.EventType, fb *types.Feedback) (types.Event, error) {
	if fb == nil {
		return types.Event{}, fmt.Errorf("feedback is required")
	}

	payload, err := json.Marshal(fb)
	if err != nil {
		return types.Event{}, fmt.Errorf("marshal feedback payload: %w", err)
	}

	return types.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		FeedbackID: fb.ID,
		Timestamp:  time.Now().UTC(),
		Version:    1,
		Source:     SourceFeedbackService,
		Payload:    payload,
	}, nil
}

// NoopPublisher discards every event. It is used when Redis is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, types.Event) error { return nil }
