package handlers

import (
	"context"
	"os"
	"testing"

	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// MockFeedbackService implements FeedbackServiceInterface for handler tests.
type MockFeedbackService struct {
	mock.Mock
}

var _ FeedbackServiceInterface = (*MockFeedbackService)(nil)

func (m *MockFeedbackService) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) CreateFeedback(ctx context.Context, input *types.FeedbackCreate) (*types.Feedback, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) DeleteFeedback(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChatService implements ChatServiceInterface for handler tests.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Reply(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

// MockHealthService implements HealthServiceInterface for handler tests.
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}
