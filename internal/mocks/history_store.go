package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// MockHistoryStore implements store.HistoryStore for testing
type MockHistoryStore struct {
	// Function fields for customizable behavior
	AppendFn     func(ctx context.Context, entry *domain.HistoryEntry) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error)
	ListByTaskFn func(ctx context.Context, taskID uuid.UUID, limit int) ([]domain.HistoryEntry, error)
	ListByActorFn func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, error)

	// Data for default implementation
	Entries []*domain.HistoryEntry
}

// NewMockHistoryStore creates a new mock store with initialized defaults
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

// Append implements the HistoryStore interface. The default implementation
// rejects invalid entries the way the real store does.
func (m *MockHistoryStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	m.Entries = append(m.Entries, entry)
	return nil
}

// GetByID implements the HistoryStore interface
func (m *MockHistoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, entry := range m.Entries {
		if entry.ID == id {
			return entry, nil
		}
	}

	return nil, store.ErrHistoryNotFound
}

// ListByTask implements the HistoryStore interface
func (m *MockHistoryStore) ListByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID, limit)
	}

	var result []domain.HistoryEntry
	for _, entry := range m.Entries {
		if entry.TaskID == taskID {
			result = append(result, *entry)
		}
	}
	return capEntries(sortEntriesNewestFirst(result), limit), nil
}

// ListByActor implements the HistoryStore interface
func (m *MockHistoryStore) ListByActor(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	if m.ListByActorFn != nil {
		return m.ListByActorFn(ctx, userID, limit)
	}

	var result []domain.HistoryEntry
	for _, entry := range m.Entries {
		if entry.PerformedBy == userID {
			result = append(result, *entry)
		}
	}
	return capEntries(sortEntriesNewestFirst(result), limit), nil
}

// WithTx implements the HistoryStore interface for transaction support
func (m *MockHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	// For mock purposes, just return the same mock
	return m
}

func sortEntriesNewestFirst(entries []domain.HistoryEntry) []domain.HistoryEntry {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PerformedAt.After(entries[j].PerformedAt)
	})
	return entries
}

func capEntries(entries []domain.HistoryEntry, limit int) []domain.HistoryEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// Ensure MockHistoryStore implements store.HistoryStore
var _ store.HistoryStore = (*MockHistoryStore)(nil)
