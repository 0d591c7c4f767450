package store

import (
	"context"

	"github.com/NomadCrew/nomad-feedback-backend/types"
)

// FeedbackStore persists the feedback collection. Every mutation replaces the
// whole persisted collection.
type FeedbackStore interface {
	// ListFeedback returns every entry in creation order. A store that has
	// never been written returns an empty slice.
	ListFeedback(ctx context.Context) ([]types.Feedback, error)
	// CreateFeedback validates input, assigns id, status and createdAt, and
	// appends the entry.
	CreateFeedback(ctx context.Context, fb *types.FeedbackCreate) (*types.Feedback, error)
	// UpdateFeedbackStatus changes the status of one entry and nothing else.
	UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error)
	// DeleteFeedback removes one entry by ID.
	DeleteFeedback(ctx context.Context, id string) error
	// Ping reports whether the backing storage is usable.
	Ping(ctx context.Context) error
}
