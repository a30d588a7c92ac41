package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// History-specific validation errors.
var (
	// ErrHistoryIDEmpty is returned when a history entry ID is empty or nil.
	ErrHistoryIDEmpty = errors.New("history entry ID cannot be empty")

	// ErrHistoryTaskEmpty is returned when a history entry has no task ID.
	ErrHistoryTaskEmpty = errors.New("history entry task ID cannot be empty")

	// ErrHistoryActorEmpty is returned when a history entry has no actor ID.
	ErrHistoryActorEmpty = errors.New("history entry actor ID cannot be empty")

	// ErrChangeConflict is returned when a single change carries both a
	// description and an old/new value pair. A change is one or the other.
	ErrChangeConflict = errors.New("change cannot combine description with old/new values")

	// ErrTransferDetailsUnexpected is returned when transfer details are
	// attached to an entry whose action is not transferred.
	ErrTransferDetailsUnexpected = errors.New("transfer details require a transferred action")

	// ErrStatusChangeUnexpected is returned when a status change block is
	// attached to an entry whose action is not status_changed.
	ErrStatusChangeUnexpected = errors.New("status change details require a status_changed action")
)

// Change describes one mutated aspect of a task within a history entry.
// A change is either descriptive (Description set) or structural (OldValue
// and/or NewValue set), never both at once.
type Change struct {
	Field       string `json:"field,omitempty"`
	OldValue    string `json:"old_value,omitempty"`
	NewValue    string `json:"new_value,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the change does not mix descriptive and structural
// forms.
func (c Change) Validate() error {
	if c.Description != "" && (c.OldValue != "" || c.NewValue != "") {
		return ErrChangeConflict
	}
	return nil
}

// TransferDetails records the parties of a task hand-over. It accompanies
// entries with the transferred action only. Either side of the transfer may
// be absent, for example when a task is handed to someone without a prior
// assignee.
type TransferDetails struct {
	FromUser   *uuid.UUID `json:"from_user,omitempty"`
	ToUser     *uuid.UUID `json:"to_user,omitempty"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// StatusChange records an approval-workflow transition. It accompanies
// entries with the status_changed action only.
type StatusChange struct {
	From   TaskStatus `json:"from,omitempty"`
	To     TaskStatus `json:"to,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// HistoryEntry is the immutable audit record of one task mutation. Entries
// are append-only: once written they are never updated or deleted, and every
// notification the system derives traces back to exactly one entry.
type HistoryEntry struct {
	ID              uuid.UUID         `json:"id"`
	TaskID          uuid.UUID         `json:"task_id"`
	Action          Action            `json:"action"`
	PerformedBy     uuid.UUID         `json:"performed_by"`
	PerformedAt     time.Time         `json:"performed_at"`
	Changes         []Change          `json:"changes,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	TransferDetails *TransferDetails  `json:"transfer_details,omitempty"`
	StatusChange    *StatusChange     `json:"status_change,omitempty"`
}

// NewHistoryEntry creates a new HistoryEntry for the given task, actor, and
// action. It generates a new UUID for the entry ID and stamps PerformedAt
// with the current time. Optional payloads (changes, metadata, transfer or
// status blocks) are assigned by the caller, which must re-run Validate
// before persisting.
// Returns an error if validation fails.
func NewHistoryEntry(taskID, performedBy uuid.UUID, action Action) (*HistoryEntry, error) {
	entry := &HistoryEntry{
		ID:          uuid.New(),
		TaskID:      taskID,
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the HistoryEntry has valid data. Unknown actions are
// rejected here rather than silently stored, so the closed taxonomy is
// enforced at write time.
// Returns an error if any field fails validation.
func (e *HistoryEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrHistoryIDEmpty
	}

	if e.TaskID == uuid.Nil {
		return ErrHistoryTaskEmpty
	}

	if e.PerformedBy == uuid.Nil {
		return ErrHistoryActorEmpty
	}

	if !e.Action.IsValid() {
		return ErrInvalidAction
	}

	for _, change := range e.Changes {
		if err := change.Validate(); err != nil {
			return err
		}
	}

	if e.TransferDetails != nil && e.Action != ActionTransferred {
		return ErrTransferDetailsUnexpected
	}

	if e.StatusChange != nil && e.Action != ActionStatusChanged {
		return ErrStatusChangeUnexpected
	}

	return nil
}

// FirstNewValue returns the NewValue of the first change carrying one, or
// the empty string when no change does. Renderers use it to pull the single
// structural value actions like stage_changed and deadline_changed record.
func (e *HistoryEntry) FirstNewValue() string {
	for _, change := range e.Changes {
		if change.NewValue != "" {
			return change.NewValue
		}
	}
	return ""
}
