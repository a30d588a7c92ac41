package store

import (
	"context"
	"database/sql"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/google/uuid"
)

// DefaultHistoryLimit is the number of entries returned when a caller does
// not specify a limit.
const DefaultHistoryLimit = 50

// HistoryStore defines the interface for the append-only task history log.
// Entries are immutable once appended: the interface deliberately carries
// no update or delete operations.
type HistoryStore interface {
	// Append saves a new history entry to the store.
	// The entry is validated first; unknown actions and missing identifiers
	// are rejected with a validation error before any write happens.
	// Returns ErrTaskNotFound if the referenced task does not exist.
	Append(ctx context.Context, entry *domain.HistoryEntry) error

	// GetByID retrieves a history entry by its unique ID.
	// Returns ErrHistoryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error)

	// ListByTask retrieves up to limit entries for the given task, newest
	// first. A limit of zero or less applies the default limit.
	// Returns an empty slice when the task has no history.
	ListByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]domain.HistoryEntry, error)

	// ListByActor retrieves up to limit entries performed by the given user,
	// newest first. A limit of zero or less applies the default limit.
	// Returns an empty slice when the user has no recorded activity.
	ListByActor(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, error)

	// WithTx returns a new HistoryStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) HistoryStore
}
