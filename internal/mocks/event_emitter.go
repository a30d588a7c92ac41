package mocks

import (
	"context"
	"sync"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/events"
)

// MockEventEmitter implements events.EventEmitter for testing
type MockEventEmitter struct {
	// Function fields for customizable behavior
	EmitEventFn func(ctx context.Context, event *events.ActivityEvent) error

	// Data for default implementation
	mu     sync.Mutex
	Events []*events.ActivityEvent
}

// NewMockEventEmitter creates a new mock emitter with initialized defaults
func NewMockEventEmitter() *MockEventEmitter {
	return &MockEventEmitter{}
}

// EmitEvent implements the EventEmitter interface. The default
// implementation records the event and succeeds.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.ActivityEvent) error {
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// EmittedCount returns how many events the default implementation recorded.
func (m *MockEventEmitter) EmittedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// LastEvent returns the most recently recorded event, or nil.
func (m *MockEventEmitter) LastEvent() *events.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Events) == 0 {
		return nil
	}
	return m.Events[len(m.Events)-1]
}

// Ensure MockEventEmitter implements events.EventEmitter
var _ events.EventEmitter = (*MockEventEmitter)(nil)
