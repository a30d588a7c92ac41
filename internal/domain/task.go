package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the approval-workflow state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusApproved   TaskStatus = "approved"
	TaskStatusRejected   TaskStatus = "rejected"
)

// TaskStage represents how far the work itself has progressed, independent
// of the approval workflow status.
type TaskStage string

// Possible task stage values.
const (
	TaskStageNotStarted  TaskStage = "not_started"
	TaskStageInProgress  TaskStage = "in_progress"
	TaskStageUnderReview TaskStage = "under_review"
	TaskStageDone        TaskStage = "done"
)

// TaskPriority represents the urgency assigned to a task by its creator.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task-specific validation errors.
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskCreatorEmpty is returned when a task's creator ID is empty or nil.
	ErrTaskCreatorEmpty = errors.New("task creator ID cannot be empty")
)

// Task represents a unit of tracked work moving through creation,
// assignment, status and stage transitions, optional transfer, and
// approval or rejection. The notification engine treats it as a read-only
// snapshot: it needs the creator, the assignee set, the title, and the
// scheduling fields, and never mutates any of them.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Stage       TaskStage    `json:"stage"`
	Priority    TaskPriority `json:"priority"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	AssignedTo  []uuid.UUID  `json:"assigned_to"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with the given title, creator, and priority.
// It generates a new UUID for the task ID, starts the task as pending and
// not started, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(title, description string, createdBy uuid.UUID, priority TaskPriority) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		Stage:       TaskStageNotStarted,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if t.CreatedBy == uuid.Nil {
		return ErrTaskCreatorEmpty
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !isValidTaskStage(t.Stage) {
		return ErrInvalidTaskStage
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	return nil
}

// IsAssignedTo reports whether the given user is currently assigned to the task.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusApproved, TaskStatusRejected:
		return true
	default:
		return false
	}
}

// isValidTaskStage checks if the given stage is a valid TaskStage.
func isValidTaskStage(stage TaskStage) bool {
	switch stage {
	case TaskStageNotStarted, TaskStageInProgress, TaskStageUnderReview, TaskStageDone:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}
