package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn              func(ctx context.Context, task *domain.Task) error
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn              func(ctx context.Context, task *domain.Task) error
	ReplaceAssigneesFn    func(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	ListByCreatorFn       func(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ListByAssigneeFn      func(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ListDeadlineBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Task, error)
	ListOverdueFn         func(ctx context.Context, asOf time.Time) ([]domain.Task, error)

	// Data for default implementation
	Tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// AddTask seeds the default in-memory implementation.
func (m *MockTaskStore) AddTask(task *domain.Task) {
	m.Tasks[task.ID] = task
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if _, exists := m.Tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}

	m.Tasks[task.ID] = task
	return nil
}

// ReplaceAssignees implements the TaskStore interface
func (m *MockTaskStore) ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if m.ReplaceAssigneesFn != nil {
		return m.ReplaceAssigneesFn(ctx, taskID, userIDs)
	}

	task, exists := m.Tasks[taskID]
	if !exists {
		return store.ErrTaskNotFound
	}

	task.AssignedTo = append([]uuid.UUID(nil), userIDs...)
	return nil
}

// ListByCreator implements the TaskStore interface
func (m *MockTaskStore) ListByCreator(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	if m.ListByCreatorFn != nil {
		return m.ListByCreatorFn(ctx, userID)
	}

	var result []domain.Task
	for _, task := range m.Tasks {
		if task.CreatedBy == userID {
			result = append(result, *task)
		}
	}
	sortTasksNewestFirst(result)
	return result, nil
}

// ListByAssignee implements the TaskStore interface
func (m *MockTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	if m.ListByAssigneeFn != nil {
		return m.ListByAssigneeFn(ctx, userID)
	}

	var result []domain.Task
	for _, task := range m.Tasks {
		if task.IsAssignedTo(userID) {
			result = append(result, *task)
		}
	}
	sortTasksNewestFirst(result)
	return result, nil
}

// ListDeadlineBetween implements the TaskStore interface
func (m *MockTaskStore) ListDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	if m.ListDeadlineBetweenFn != nil {
		return m.ListDeadlineBetweenFn(ctx, from, to)
	}

	var result []domain.Task
	for _, task := range m.Tasks {
		if !taskIsActive(task) || task.Deadline == nil {
			continue
		}
		if task.Deadline.Before(from) || task.Deadline.After(to) {
			continue
		}
		result = append(result, *task)
	}
	sortTasksNewestFirst(result)
	return result, nil
}

// ListOverdue implements the TaskStore interface
func (m *MockTaskStore) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Task, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, asOf)
	}

	var result []domain.Task
	for _, task := range m.Tasks {
		if !taskIsActive(task) || task.Deadline == nil {
			continue
		}
		if !task.Deadline.Before(asOf) {
			continue
		}
		result = append(result, *task)
	}
	sortTasksNewestFirst(result)
	return result, nil
}

// WithTx implements the TaskStore interface for transaction support
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	// For mock purposes, just return the same mock
	return m
}

// taskIsActive mirrors the sweep filter: stage not done, status neither
// approved nor rejected.
func taskIsActive(task *domain.Task) bool {
	if task.Stage == domain.TaskStageDone {
		return false
	}
	if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
		return false
	}
	return true
}

func sortTasksNewestFirst(tasks []domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)
