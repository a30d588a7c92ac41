package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError. Sentinel errors the
// API layer matches on pass through unchanged instead of being wrapped.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		store.ErrTaskNotFound,
		store.ErrUserNotFound,
		domain.ErrUnauthorized,
		ErrTaskFinished,
		ErrNotAssignee,
		ErrNoChange,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateTaskParams carries the fields needed to create a task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Deadline    *time.Time
	CreatedBy   uuid.UUID
	AssignedTo  []uuid.UUID
}

// UpdateTaskParams carries optional priority and deadline updates. A nil
// field leaves that attribute untouched; ClearDeadline removes the deadline
// and wins over Deadline when both are set.
type UpdateTaskParams struct {
	Priority      *domain.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
}

// TaskWorkflow defines the task lifecycle operations the API layer
// depends on. *TaskService is the production implementation.
type TaskWorkflow interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	ListCreated(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ListAssigned(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ChangeStatus(ctx context.Context, taskID, actorID uuid.UUID, newStatus domain.TaskStatus, reason string) (*domain.Task, error)
	ChangeStage(ctx context.Context, taskID, actorID uuid.UUID, newStage domain.TaskStage) (*domain.Task, error)
	UpdateDetails(ctx context.Context, taskID, actorID uuid.UUID, params UpdateTaskParams) (*domain.Task, error)
	Assign(ctx context.Context, taskID, actorID uuid.UUID, assignees []uuid.UUID) (*domain.Task, error)
	Transfer(ctx context.Context, taskID, actorID, fromUser, toUser uuid.UUID, reason string) (*domain.Task, error)
}

// TaskService owns the task lifecycle. Every mutation commits the task
// change and its history entry in a single transaction, then publishes the
// recorded entry through the activity service so notification fan-out runs
// only against committed state.
type TaskService struct {
	db           *sql.DB
	taskStore    store.TaskStore
	historyStore store.HistoryStore
	userStore    store.UserStore
	activity     *ActivityService
	logger       *slog.Logger

	// runInTx defaults to store.RunInTransaction; injectable for testing.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// Ensure TaskService implements TaskWorkflow
var _ TaskWorkflow = (*TaskService)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	historyStore store.HistoryStore,
	userStore store.UserStore,
	activity *ActivityService,
	logger *slog.Logger,
) (*TaskService, error) {
	if db == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if historyStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "historyStore cannot be nil"}
	}
	if userStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if activity == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "activity cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		db:           db,
		taskStore:    taskStore,
		historyStore: historyStore,
		userStore:    userStore,
		activity:     activity,
		logger:       logger.With(slog.String("component", "task_service")),
		runInTx:      store.RunInTransaction,
	}, nil
}

// CreateTask creates a task and its creation history entry atomically.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(params.Title, params.Description, params.CreatedBy, params.Priority)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}
	task.Deadline = params.Deadline
	task.AssignedTo = dedupIDs(params.AssignedTo)

	entry, err := domain.NewHistoryEntry(task.ID, params.CreatedBy, domain.ActionCreated)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "invalid history entry", err)
	}

	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			return NewTaskServiceError("create_task", "failed to save task", err)
		}
		if err := s.historyStore.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("create_task", "failed to append history entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("created task",
		"task_id", task.ID,
		"created_by", params.CreatedBy,
		"assignee_count", len(task.AssignedTo))

	s.activity.publishRecorded(ctx, entry)
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

// ListCreated returns the tasks created by a user, newest first.
func (s *TaskService) ListCreated(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := s.taskStore.ListByCreator(ctx, userID)
	if err != nil {
		return nil, NewTaskServiceError("list_created", "failed to list tasks", err)
	}
	return tasks, nil
}

// ListAssigned returns the tasks assigned to a user, newest first.
func (s *TaskService) ListAssigned(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := s.taskStore.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, NewTaskServiceError("list_assigned", "failed to list tasks", err)
	}
	return tasks, nil
}

// ChangeStatus moves a task to a new workflow status. Terminal statuses
// record their dedicated actions (completed, approved, rejected); approval
// and rejection require a manager. Returns the unchanged task together
// with ErrNoChange when the status is already current.
func (s *TaskService) ChangeStatus(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	newStatus domain.TaskStatus,
	reason string,
) (*domain.Task, error) {
	var (
		task  *domain.Task
		entry *domain.HistoryEntry
	)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("change_status", "failed to load task", err)
		}

		actor, err := s.userStore.WithTx(tx).GetByID(ctx, actorID)
		if err != nil {
			return NewTaskServiceError("change_status", "failed to load actor", err)
		}
		if err := canActOnTask(actor, task); err != nil {
			return err
		}
		if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
			return ErrTaskFinished
		}

		oldStatus := task.Status
		if oldStatus == newStatus {
			return ErrNoChange
		}

		action := actionForStatus(newStatus)
		if (action == domain.ActionApproved || action == domain.ActionRejected) && !actor.IsManager() {
			return domain.ErrUnauthorized
		}

		task.Status = newStatus
		task.UpdatedAt = time.Now().UTC()
		if err := task.Validate(); err != nil {
			return NewTaskServiceError("change_status", "invalid status", err)
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("change_status", "failed to update task", err)
		}

		entry, err = domain.NewHistoryEntry(taskID, actorID, action)
		if err != nil {
			return NewTaskServiceError("change_status", "invalid history entry", err)
		}
		if action == domain.ActionStatusChanged {
			entry.StatusChange = &domain.StatusChange{From: oldStatus, To: newStatus, Reason: reason}
		} else {
			entry.Changes = []domain.Change{{
				Field:    "status",
				OldValue: string(oldStatus),
				NewValue: string(newStatus),
			}}
			if reason != "" {
				entry.Metadata = map[string]string{"reason": reason}
			}
		}
		if err := entry.Validate(); err != nil {
			return NewTaskServiceError("change_status", "invalid history entry", err)
		}
		if err := s.historyStore.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("change_status", "failed to append history entry", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return task, ErrNoChange
		}
		return nil, err
	}

	s.activity.publishRecorded(ctx, entry)
	return task, nil
}

// ChangeStage moves a task to a new progress stage. Returns the unchanged
// task together with ErrNoChange when the stage is already current.
func (s *TaskService) ChangeStage(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	newStage domain.TaskStage,
) (*domain.Task, error) {
	var (
		task  *domain.Task
		entry *domain.HistoryEntry
	)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("change_stage", "failed to load task", err)
		}

		actor, err := s.userStore.WithTx(tx).GetByID(ctx, actorID)
		if err != nil {
			return NewTaskServiceError("change_stage", "failed to load actor", err)
		}
		if err := canActOnTask(actor, task); err != nil {
			return err
		}
		if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
			return ErrTaskFinished
		}

		oldStage := task.Stage
		if oldStage == newStage {
			return ErrNoChange
		}

		task.Stage = newStage
		task.UpdatedAt = time.Now().UTC()
		if err := task.Validate(); err != nil {
			return NewTaskServiceError("change_stage", "invalid stage", err)
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("change_stage", "failed to update task", err)
		}

		entry, err = domain.NewHistoryEntry(taskID, actorID, domain.ActionStageChanged)
		if err != nil {
			return NewTaskServiceError("change_stage", "invalid history entry", err)
		}
		entry.Changes = []domain.Change{{
			Field:    "stage",
			OldValue: string(oldStage),
			NewValue: string(newStage),
		}}
		if err := s.historyStore.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("change_stage", "failed to append history entry", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return task, ErrNoChange
		}
		return nil, err
	}

	s.activity.publishRecorded(ctx, entry)
	return task, nil
}

// UpdateDetails applies priority and deadline updates, recording one
// history entry per changed attribute. Returns the unchanged task together
// with ErrNoChange when nothing would change.
func (s *TaskService) UpdateDetails(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	var (
		task    *domain.Task
		entries []*domain.HistoryEntry
	)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("update_details", "failed to load task", err)
		}

		actor, err := s.userStore.WithTx(tx).GetByID(ctx, actorID)
		if err != nil {
			return NewTaskServiceError("update_details", "failed to load actor", err)
		}
		if err := canActOnTask(actor, task); err != nil {
			return err
		}
		if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
			return ErrTaskFinished
		}

		if params.Priority != nil && *params.Priority != task.Priority {
			entry, err := domain.NewHistoryEntry(taskID, actorID, domain.ActionPriorityChanged)
			if err != nil {
				return NewTaskServiceError("update_details", "invalid history entry", err)
			}
			entry.Changes = []domain.Change{{
				Field:    "priority",
				OldValue: string(task.Priority),
				NewValue: string(*params.Priority),
			}}
			entries = append(entries, entry)
			task.Priority = *params.Priority
		}

		oldDeadline := ""
		if task.Deadline != nil {
			oldDeadline = task.Deadline.Format(time.RFC3339)
		}
		switch {
		case params.ClearDeadline && task.Deadline != nil:
			entry, err := domain.NewHistoryEntry(taskID, actorID, domain.ActionDeadlineChanged)
			if err != nil {
				return NewTaskServiceError("update_details", "invalid history entry", err)
			}
			entry.Changes = []domain.Change{{
				Field:    "deadline",
				OldValue: oldDeadline,
			}}
			entries = append(entries, entry)
			task.Deadline = nil

		case !params.ClearDeadline && params.Deadline != nil &&
			(task.Deadline == nil || !task.Deadline.Equal(*params.Deadline)):
			entry, err := domain.NewHistoryEntry(taskID, actorID, domain.ActionDeadlineChanged)
			if err != nil {
				return NewTaskServiceError("update_details", "invalid history entry", err)
			}
			entry.Changes = []domain.Change{{
				Field:    "deadline",
				OldValue: oldDeadline,
				NewValue: params.Deadline.Format(time.RFC3339),
			}}
			entries = append(entries, entry)
			deadline := *params.Deadline
			task.Deadline = &deadline
		}

		if len(entries) == 0 {
			return ErrNoChange
		}

		task.UpdatedAt = time.Now().UTC()
		if err := task.Validate(); err != nil {
			return NewTaskServiceError("update_details", "invalid task update", err)
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("update_details", "failed to update task", err)
		}

		txHistory := s.historyStore.WithTx(tx)
		for _, entry := range entries {
			if err := txHistory.Append(ctx, entry); err != nil {
				return NewTaskServiceError("update_details", "failed to append history entry", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return task, ErrNoChange
		}
		return nil, err
	}

	for _, entry := range entries {
		s.activity.publishRecorded(ctx, entry)
	}
	return task, nil
}

// Assign replaces the task's assignee set. Only the creator or a manager
// may assign. Returns the unchanged task together with ErrNoChange when the
// new set equals the current one.
func (s *TaskService) Assign(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	assignees []uuid.UUID,
) (*domain.Task, error) {
	var (
		task  *domain.Task
		entry *domain.HistoryEntry
	)
	assignees = dedupIDs(assignees)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("assign", "failed to load task", err)
		}

		actor, err := s.userStore.WithTx(tx).GetByID(ctx, actorID)
		if err != nil {
			return NewTaskServiceError("assign", "failed to load actor", err)
		}
		if err := canManageTask(actor, task); err != nil {
			return err
		}
		if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
			return ErrTaskFinished
		}

		if sameIDSet(task.AssignedTo, assignees) {
			return ErrNoChange
		}

		if err := txTasks.ReplaceAssignees(ctx, taskID, assignees); err != nil {
			return NewTaskServiceError("assign", "failed to replace assignees", err)
		}
		task.AssignedTo = assignees

		entry, err = domain.NewHistoryEntry(taskID, actorID, domain.ActionAssigned)
		if err != nil {
			return NewTaskServiceError("assign", "invalid history entry", err)
		}
		if err := s.historyStore.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("assign", "failed to append history entry", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return task, ErrNoChange
		}
		return nil, err
	}

	s.activity.publishRecorded(ctx, entry)
	return task, nil
}

// Transfer moves a task from one assignee to another. The departing user
// must currently be assigned; the receiving user must exist. Only the
// creator or a manager may transfer.
func (s *TaskService) Transfer(
	ctx context.Context,
	taskID, actorID, fromUser, toUser uuid.UUID,
	reason string,
) (*domain.Task, error) {
	var (
		task  *domain.Task
		entry *domain.HistoryEntry
	)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txUsers := s.userStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("transfer", "failed to load task", err)
		}

		actor, err := txUsers.GetByID(ctx, actorID)
		if err != nil {
			return NewTaskServiceError("transfer", "failed to load actor", err)
		}
		if err := canManageTask(actor, task); err != nil {
			return err
		}
		if task.Status == domain.TaskStatusApproved || task.Status == domain.TaskStatusRejected {
			return ErrTaskFinished
		}

		if !task.IsAssignedTo(fromUser) {
			return ErrNotAssignee
		}
		if _, err := txUsers.GetByID(ctx, toUser); err != nil {
			return NewTaskServiceError("transfer", "failed to load receiving user", err)
		}

		assignees := make([]uuid.UUID, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if id == fromUser {
				continue
			}
			assignees = append(assignees, id)
		}
		assignees = append(assignees, toUser)
		assignees = dedupIDs(assignees)

		if err := txTasks.ReplaceAssignees(ctx, taskID, assignees); err != nil {
			return NewTaskServiceError("transfer", "failed to replace assignees", err)
		}
		task.AssignedTo = assignees

		entry, err = domain.NewHistoryEntry(taskID, actorID, domain.ActionTransferred)
		if err != nil {
			return NewTaskServiceError("transfer", "invalid history entry", err)
		}
		from := fromUser
		to := toUser
		approvedBy := actorID
		entry.TransferDetails = &domain.TransferDetails{
			FromUser:   &from,
			ToUser:     &to,
			ApprovedBy: &approvedBy,
			Reason:     reason,
		}
		if err := entry.Validate(); err != nil {
			return NewTaskServiceError("transfer", "invalid history entry", err)
		}
		if err := s.historyStore.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("transfer", "failed to append history entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.publishRecorded(ctx, entry)
	return task, nil
}

// actionForStatus maps a target status to the history action it records.
func actionForStatus(status domain.TaskStatus) domain.Action {
	switch status {
	case domain.TaskStatusCompleted:
		return domain.ActionCompleted
	case domain.TaskStatusApproved:
		return domain.ActionApproved
	case domain.TaskStatusRejected:
		return domain.ActionRejected
	default:
		return domain.ActionStatusChanged
	}
}

// canActOnTask allows the creator, an assignee, or a manager to act.
func canActOnTask(actor *domain.User, task *domain.Task) error {
	if actor.IsManager() || task.CreatedBy == actor.ID || task.IsAssignedTo(actor.ID) {
		return nil
	}
	return domain.ErrUnauthorized
}

// canManageTask allows only the creator or a manager to act.
func canManageTask(actor *domain.User, task *domain.Task) error {
	if actor.IsManager() || task.CreatedBy == actor.ID {
		return nil
	}
	return domain.ErrUnauthorized
}

// dedupIDs drops duplicate and zero-valued IDs, preserving order.
func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// sameIDSet reports whether two ID slices contain the same members,
// ignoring order and duplicates.
func sameIDSet(a, b []uuid.UUID) bool {
	setA := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}
	return true
}
