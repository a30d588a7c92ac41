package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend. Tasks span two tables:
// the tasks row itself and the task_assignees join rows for the assignee set.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves the task row and its assignee set. The two writes are only atomic
// when the store runs on a transaction, which is how the task service calls it.
// Returns store.ErrUserNotFound if the creator or an assignee does not exist.
// Returns validation errors from the domain Task if data is invalid.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, status, stage, priority,
			deadline, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Stage,
		task.Priority,
		task.Deadline,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("unknown creator during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("created_by", task.CreatedBy.String()))
			return store.ErrUserNotFound
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := s.insertAssignees(ctx, task.ID, task.AssignedTo); err != nil {
		log.Error("failed to save task assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()),
		slog.Int("assignees", len(task.AssignedTo)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID, including the resolved assignee set.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, status, stage, priority,
			deadline, created_by, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	assignees, err := s.loadAssignees(ctx, id)
	if err != nil {
		log.Error("failed to load task assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}
	task.AssignedTo = assignees

	return task, nil
}

// Update implements store.TaskStore.Update
// It rewrites the task's mutable fields. The assignee set is managed
// separately through ReplaceAssignees.
// Returns store.ErrTaskNotFound if the task does not exist.
// Returns validation errors from the domain Task if data is invalid.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, stage = $4,
			priority = $5, deadline = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Stage,
		task.Priority,
		task.Deadline,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("stage", string(task.Stage)))
	return nil
}

// ReplaceAssignees implements store.TaskStore.ReplaceAssignees
// It rewrites the task's assignee set to exactly the given user IDs.
// Returns store.ErrTaskNotFound if the task does not exist.
// Returns store.ErrUserNotFound if one of the users does not exist.
func (s *PostgresTaskStore) ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// An empty assignee set is legal, so absence has to be checked explicitly
	// rather than inferred from affected rows.
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`,
		taskID,
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check task existence",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}
	if !exists {
		log.Debug("task not found for assignee replacement",
			slog.String("task_id", taskID.String()))
		return store.ErrTaskNotFound
	}

	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM task_assignees WHERE task_id = $1`,
		taskID,
	); err != nil {
		log.Error("failed to clear task assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	if err := s.insertAssignees(ctx, taskID, userIDs); err != nil {
		log.Error("failed to save task assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	log.Debug("task assignees replaced",
		slog.String("task_id", taskID.String()),
		slog.Int("assignees", len(userIDs)))
	return nil
}

// ListByCreator implements store.TaskStore.ListByCreator
// It retrieves all tasks created by the given user, newest first.
func (s *PostgresTaskStore) ListByCreator(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, title, description, status, stage, priority,
			deadline, created_by, created_at, updated_at
		FROM tasks
		WHERE created_by = $1
		ORDER BY created_at DESC
	`
	return s.listTasks(ctx, query, userID)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
// It retrieves all tasks the given user is assigned to, newest first.
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.stage, t.priority,
			t.deadline, t.created_by, t.created_at, t.updated_at
		FROM tasks t
		JOIN task_assignees ta ON ta.task_id = t.id
		WHERE ta.user_id = $1
		ORDER BY t.created_at DESC
	`
	return s.listTasks(ctx, query, userID)
}

// ListDeadlineBetween implements store.TaskStore.ListDeadlineBetween
// It retrieves active tasks whose deadline falls within [from, to]. Active
// means the stage is not done and the status is neither approved nor rejected.
func (s *PostgresTaskStore) ListDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	query := `
		SELECT id, title, description, status, stage, priority,
			deadline, created_by, created_at, updated_at
		FROM tasks
		WHERE deadline IS NOT NULL
			AND deadline >= $1 AND deadline <= $2
			AND stage <> $3
			AND status <> $4 AND status <> $5
		ORDER BY deadline ASC
	`
	return s.listTasks(ctx, query,
		from, to,
		domain.TaskStageDone,
		domain.TaskStatusApproved, domain.TaskStatusRejected)
}

// ListOverdue implements store.TaskStore.ListOverdue
// It retrieves active tasks whose deadline lies strictly before asOf, under
// the same active filter as ListDeadlineBetween.
func (s *PostgresTaskStore) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Task, error) {
	query := `
		SELECT id, title, description, status, stage, priority,
			deadline, created_by, created_at, updated_at
		FROM tasks
		WHERE deadline IS NOT NULL
			AND deadline < $1
			AND stage <> $2
			AND status <> $3 AND status <> $4
		ORDER BY deadline ASC
	`
	return s.listTasks(ctx, query,
		asOf,
		domain.TaskStageDone,
		domain.TaskStatusApproved, domain.TaskStatusRejected)
}

// WithTx implements store.TaskStore.WithTx
// It returns a new store instance running its queries on the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// listTasks runs a task query, scans the rows, and resolves each task's
// assignee set.
func (s *PostgresTaskStore) listTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	for i := range tasks {
		assignees, err := s.loadAssignees(ctx, tasks[i].ID)
		if err != nil {
			log.Error("failed to load task assignees",
				slog.String("error", err.Error()),
				slog.String("task_id", tasks[i].ID.String()))
			return nil, err
		}
		tasks[i].AssignedTo = assignees
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, nil
}

// insertAssignees writes one join row per assignee. Duplicate IDs in the
// input collapse through the ON CONFLICT clause.
func (s *PostgresTaskStore) insertAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	query := `
		INSERT INTO task_assignees (task_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`
	for _, userID := range userIDs {
		if _, err := s.db.ExecContext(ctx, query, taskID, userID); err != nil {
			if IsForeignKeyViolation(err) {
				return store.ErrUserNotFound
			}
			return MapError(err)
		}
	}
	return nil
}

// loadAssignees resolves the assignee set for one task in assignment order.
func (s *PostgresTaskStore) loadAssignees(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM task_assignees
		WHERE task_id = $1
		ORDER BY assigned_at, user_id
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// scanTask reads one task row without its assignee set. The caller handles
// sql.ErrNoRows.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, stage, priority string
	var deadline sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&stage,
		&priority,
		&deadline,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Stage = domain.TaskStage(stage)
	task.Priority = domain.TaskPriority(priority)
	if deadline.Valid {
		task.Deadline = &deadline.Time
	}

	return &task, nil
}
