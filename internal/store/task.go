package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/google/uuid"
)

// TaskStore defines the interface for task data persistence.
// The notification engine reads task snapshots through this interface; the
// mutation methods exist for the thin task collaborator that applies a
// change before the matching history entry is recorded.
type TaskStore interface {
	// Create saves a new task and its assignee set to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, including the resolved
	// assignee set.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update modifies an existing task's mutable fields (title, description,
	// status, stage, priority, deadline). The assignee set is managed
	// separately through ReplaceAssignees.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns validation errors from the domain Task if data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// ReplaceAssignees rewrites the task's assignee set to exactly the given
	// user IDs.
	// Returns ErrTaskNotFound if the task does not exist.
	ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error

	// ListByCreator retrieves all tasks created by the given user, newest first.
	// Returns an empty slice when the user has created no tasks.
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// ListByAssignee retrieves all tasks the given user is assigned to,
	// newest first.
	// Returns an empty slice when the user has no assignments.
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// ListDeadlineBetween retrieves active tasks whose deadline falls within
	// [from, to]. Active means stage is not done and status is neither
	// approved nor rejected. Assignee sets are resolved on each task.
	ListDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error)

	// ListOverdue retrieves active tasks whose deadline lies strictly before
	// asOf, under the same active filter as ListDeadlineBetween.
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
