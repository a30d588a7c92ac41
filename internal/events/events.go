package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventHistoryRecorded is emitted after a history entry has been durably
// appended. The payload is a HistoryRecordedPayload.
const EventHistoryRecorded = "history_recorded"

// HistoryRecordedPayload identifies the history entry an event refers to.
// Handlers re-load the entry and the task snapshot themselves, so the
// payload stays small and the event never carries stale denormalized state.
type HistoryRecordedPayload struct {
	HistoryID uuid.UUID `json:"history_id"`
	TaskID    uuid.UUID `json:"task_id"`
}

// ActivityEvent represents something that happened in the task workflow and
// may interest other components. It carries its payload serialized as JSON
// so emitters and handlers share no struct dependencies beyond this package.
type ActivityEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened (e.g., EventHistoryRecorded)
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ActivityEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewActivityEvent creates a new ActivityEvent with the specified type and payload.
func NewActivityEvent(eventType string, payload interface{}) (*ActivityEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ActivityEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ActivityEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ActivityEvent) error
}
