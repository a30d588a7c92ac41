package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api/shared"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/scheduler"
)

// SweepResponse reports the outcome of one manually triggered reminder sweep
type SweepResponse struct {
	CreatedCount  int                    `json:"created_count"`
	Notifications []NotificationResponse `json:"notifications"`
}

// AdminHandler exposes the reminder sweeps as manager-only endpoints, so
// operators can trigger a sweep without waiting for the scheduler.
type AdminHandler struct {
	reminderService scheduler.SweepRunner
	logger          *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reminderService scheduler.SweepRunner, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}

	return &AdminHandler{
		reminderService: reminderService,
		logger:          logger.With(slog.String("component", "admin_handler")),
	}
}

// RunDeadlineSweep handles POST /admin/sweeps/deadline requests
func (h *AdminHandler) RunDeadlineSweep(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, "deadline", h.reminderService.RunDeadlineSweep)
}

// RunOverdueSweep handles POST /admin/sweeps/overdue requests
func (h *AdminHandler) RunOverdueSweep(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, "overdue", h.reminderService.RunOverdueSweep)
}

// runSweep executes one sweep and reports the notifications it created.
// Sweeps are idempotent within a calendar day, so re-running one is safe.
func (h *AdminHandler) runSweep(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	sweep func(ctx context.Context) ([]*domain.Notification, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	created, err := sweep(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run reminder sweep")
		return
	}

	responses := make([]NotificationResponse, 0, len(created))
	for _, notification := range created {
		responses = append(responses, notificationToResponse(notification))
	}

	log.Info("reminder sweep completed",
		slog.String("sweep", name),
		slog.Int("created_count", len(created)))
	shared.RespondWithJSON(w, r, http.StatusOK, SweepResponse{
		CreatedCount:  len(created),
		Notifications: responses,
	})
}
