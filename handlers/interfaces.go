package handlers

import (
	"context"

	"github.com/NomadCrew/nomad-feedback-backend/types"
)

// FeedbackServiceInterface defines the feedback operations needed by handlers
type FeedbackServiceInterface interface {
	ListFeedback(ctx context.Context) ([]types.Feedback, error)
	CreateFeedback(ctx context.Context, input *types.FeedbackCreate) (*types.Feedback, error)
	UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// ChatServiceInterface defines the chat passthrough needed by handlers
type ChatServiceInterface interface {
	Reply(ctx context.Context, message string) (string, error)
}

// HealthServiceInterface defines the health check needed by handlers
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}
