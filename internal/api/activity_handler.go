package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api/shared"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service"
)

// HistoryEntryResponse represents the response data for one history entry
type HistoryEntryResponse struct {
	ID              string                  `json:"id"`
	TaskID          string                  `json:"task_id"`
	Action          string                  `json:"action"`
	PerformedBy     string                  `json:"performed_by"`
	PerformedAt     time.Time               `json:"performed_at"`
	Changes         []domain.Change         `json:"changes,omitempty"`
	Metadata        map[string]string       `json:"metadata,omitempty"`
	TransferDetails *domain.TransferDetails `json:"transfer_details,omitempty"`
	StatusChange    *domain.StatusChange    `json:"status_change,omitempty"`
}

// RecordEventRequest represents the request body for recording a task event.
// The actor is always the authenticated user; clients cannot record events
// on someone else's behalf.
type RecordEventRequest struct {
	Action          string                  `json:"action" validate:"required"`
	Changes         []domain.Change         `json:"changes"`
	Metadata        map[string]string       `json:"metadata"`
	TransferDetails *domain.TransferDetails `json:"transfer_details"`
	StatusChange    *domain.StatusChange    `json:"status_change"`
}

// ActivityHandler handles history-related HTTP requests
type ActivityHandler struct {
	activityService service.ActivityLog
	logger          *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService service.ActivityLog, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ActivityHandler")
	}

	return &ActivityHandler{
		activityService: activityService,
		logger:          logger.With(slog.String("component", "activity_handler")),
	}
}

// RecordEvent handles POST /tasks/{id}/events requests. It appends one
// history entry for the task and triggers notification fan-out.
func (h *ActivityHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RecordEventRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	entry, err := h.activityService.RecordTaskEvent(r.Context(), service.RecordTaskEventParams{
		TaskID:          taskID,
		Action:          domain.Action(req.Action),
		PerformedBy:     userID,
		Changes:         req.Changes,
		Metadata:        req.Metadata,
		TransferDetails: req.TransferDetails,
		StatusChange:    req.StatusChange,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task event recorded",
		slog.String("task_id", taskID.String()),
		slog.String("action", req.Action),
		slog.String("entry_id", entry.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, historyEntryToResponse(entry))
}

// TaskHistory handles GET /tasks/{id}/history requests, returning the
// task's history entries newest first.
func (h *ActivityHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	entries, err := h.activityService.ListTaskHistory(r.Context(), taskID, limitFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyEntriesToResponse(entries))
}

// MyActivity handles GET /activity requests, returning the authenticated
// user's recorded actions newest first.
func (h *ActivityHandler) MyActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	entries, err := h.activityService.ListActorHistory(r.Context(), userID, limitFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyEntriesToResponse(entries))
}

// limitFromQuery parses the optional limit query parameter. Malformed or
// missing values return zero, which the store replaces with its default.
func limitFromQuery(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// historyEntryToResponse converts a domain.HistoryEntry to a HistoryEntryResponse
func historyEntryToResponse(entry *domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:              entry.ID.String(),
		TaskID:          entry.TaskID.String(),
		Action:          string(entry.Action),
		PerformedBy:     entry.PerformedBy.String(),
		PerformedAt:     entry.PerformedAt,
		Changes:         entry.Changes,
		Metadata:        entry.Metadata,
		TransferDetails: entry.TransferDetails,
		StatusChange:    entry.StatusChange,
	}
}

// historyEntriesToResponse converts a slice of history entries.
func historyEntriesToResponse(entries []domain.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, historyEntryToResponse(&entries[i]))
	}
	return responses
}
