package events

import (
	"context"
	"sync"

	"github.com/NomadCrew/nomad-feedback-backend/types"
)

// MockPublisher implements types.EventPublisher for testing
type MockPublisher struct {
	mu     sync.RWMutex
	events []types.Event
	err    error
}

// NewMockPublisher creates a new mock publisher for testing
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// FailWith makes every following Publish return err without recording.
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Publish records an event for testing
func (m *MockPublisher) Publish(ctx context.Context, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (m *MockPublisher) Events() []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Event, len(m.events))
	copy(out, m.events)
	return out
}
