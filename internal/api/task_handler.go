package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api/shared"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service"
	"github.com/google/uuid"
)

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Stage       string     `json:"stage"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedBy   string     `json:"created_by"`
	AssignedTo  []string   `json:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string      `json:"title"       validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	Priority    string      `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	Deadline    *time.Time  `json:"deadline"`
	AssignedTo  []uuid.UUID `json:"assigned_to"`
}

// ChangeStatusRequest represents the request body for a status transition
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed approved rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// ChangeStageRequest represents the request body for a stage transition
type ChangeStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=not_started in_progress under_review done"`
}

// UpdateTaskRequest represents the request body for updating task details.
// Omitted fields are left untouched; clear_deadline removes the deadline.
type UpdateTaskRequest struct {
	Priority      *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

// AssignTaskRequest represents the request body for replacing the assignee set
type AssignTaskRequest struct {
	AssignedTo []uuid.UUID `json:"assigned_to" validate:"required,min=1"`
}

// TransferTaskRequest represents the request body for a task hand-over
type TransferTaskRequest struct {
	FromUser uuid.UUID `json:"from_user" validate:"required"`
	ToUser   uuid.UUID `json:"to_user"   validate:"required"`
	Reason   string    `json:"reason"    validate:"max=500"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskWorkflow
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskWorkflow, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks requests
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Deadline:    req.Deadline,
		CreatedBy:   userID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// Get handles GET /tasks/{id} requests
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListCreated handles GET /tasks/created requests, returning the tasks the
// authenticated user created, newest first.
func (h *TaskHandler) ListCreated(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, h.taskService.ListCreated)
}

// ListAssigned handles GET /tasks/assigned requests, returning the tasks
// assigned to the authenticated user, newest first.
func (h *TaskHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, h.taskService.ListAssigned)
}

// ChangeStatus handles PATCH /tasks/{id}/status requests
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.ChangeStatus(
		r.Context(), taskID, userID, domain.TaskStatus(req.Status), req.Reason)
	if h.respondTaskMutation(w, r, log, task, err) {
		return
	}

	log.Debug("task status changed",
		slog.String("task_id", taskID.String()),
		slog.String("status", req.Status))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ChangeStage handles PATCH /tasks/{id}/stage requests
func (h *TaskHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChangeStageRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.ChangeStage(r.Context(), taskID, userID, domain.TaskStage(req.Stage))
	if h.respondTaskMutation(w, r, log, task, err) {
		return
	}

	log.Debug("task stage changed",
		slog.String("task_id", taskID.String()),
		slog.String("stage", req.Stage))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Update handles PATCH /tasks/{id} requests for priority and deadline edits
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	params := service.UpdateTaskParams{
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		params.Priority = &priority
	}

	task, err := h.taskService.UpdateDetails(r.Context(), taskID, userID, params)
	if h.respondTaskMutation(w, r, log, task, err) {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Assign handles POST /tasks/{id}/assign requests
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.Assign(r.Context(), taskID, userID, req.AssignedTo)
	if h.respondTaskMutation(w, r, log, task, err) {
		return
	}

	log.Debug("task assignees replaced",
		slog.String("task_id", taskID.String()),
		slog.Int("assignee_count", len(task.AssignedTo)))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Transfer handles POST /tasks/{id}/transfer requests
func (h *TaskHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req TransferTaskRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	task, err := h.taskService.Transfer(
		r.Context(), taskID, userID, req.FromUser, req.ToUser, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task transferred",
		slog.String("task_id", taskID.String()),
		slog.String("from_user", req.FromUser.String()),
		slog.String("to_user", req.ToUser.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// listTasks runs one of the task listing service calls for the
// authenticated user and writes the response.
func (h *TaskHandler) listTasks(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID uuid.UUID) ([]domain.Task, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	tasks, err := list(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, taskToResponse(&tasks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// respondTaskMutation handles the shared error path of task mutations.
// A no-op mutation answers 200 with the unchanged task; every other error
// goes through the standard mapping. Returns true when a response has been
// written.
func (h *TaskHandler) respondTaskMutation(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	task *domain.Task,
	err error,
) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, service.ErrNoChange) && task != nil {
		log.Debug("mutation was a no-op", slog.String("task_id", task.ID.String()))
		shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
		return true
	}

	HandleAPIError(w, r, err, "")
	return true
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	assignedTo := make([]string, 0, len(task.AssignedTo))
	for _, id := range task.AssignedTo {
		assignedTo = append(assignedTo, id.String())
	}

	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Stage:       string(task.Stage),
		Priority:    string(task.Priority),
		Deadline:    task.Deadline,
		CreatedBy:   task.CreatedBy.String(),
		AssignedTo:  assignedTo,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
