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
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
)

// NotificationResponse represents the response data for a notification
type NotificationResponse struct {
	ID          string                  `json:"id"`
	Recipient   string                  `json:"recipient"`
	Sender      *string                 `json:"sender,omitempty"`
	Type        string                  `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	RelatedTask string                  `json:"related_task"`
	Priority    string                  `json:"priority"`
	Data        domain.NotificationData `json:"data"`
	IsRead      bool                    `json:"is_read"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NotificationListResponse represents one page of notifications together
// with its pagination metadata
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Total         int64                  `json:"total"`
	TotalPages    int                    `json:"total_pages"`
}

// UnreadCountResponse represents the unread notification count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkAllReadResponse reports how many notifications were marked read
type MarkAllReadResponse struct {
	ModifiedCount int64 `json:"modified_count"`
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService service.NotificationInbox
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	notificationService service.NotificationInbox,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}

	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger.With(slog.String("component", "notification_handler")),
	}
}

// List handles GET /notifications requests. Supported query parameters:
// page, limit, unread_only, and type.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	page, err := h.notificationService.List(r.Context(), userID, listOptionsFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]NotificationResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, notificationToResponse(&page.Items[i]))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NotificationListResponse{
		Notifications: responses,
		Page:          page.Page,
		Limit:         page.Limit,
		Total:         page.Total,
		TotalPages:    page.TotalPages,
	})
}

// UnreadCount handles GET /notifications/unread-count requests
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// MarkRead handles PATCH /notifications/{id}/read requests
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, notificationID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(r.Context(), notificationID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("notification marked read",
		slog.String("notification_id", notificationID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, notificationToResponse(notification))
}

// MarkAllRead handles PATCH /notifications/read-all requests
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	modified, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{ModifiedCount: modified})
}

// listOptionsFromQuery parses the pagination and filter query parameters.
// Malformed numbers fall back to zero, which the store normalizes.
func listOptionsFromQuery(r *http.Request) store.ListOptions {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	unreadOnly, _ := strconv.ParseBool(query.Get("unread_only"))

	return store.ListOptions{
		Page:       page,
		Limit:      limit,
		UnreadOnly: unreadOnly,
		Type:       domain.NotificationType(query.Get("type")),
	}
}

// notificationToResponse converts a domain.Notification to a NotificationResponse
func notificationToResponse(notification *domain.Notification) NotificationResponse {
	var sender *string
	if notification.Sender != nil {
		s := notification.Sender.String()
		sender = &s
	}

	return NotificationResponse{
		ID:          notification.ID.String(),
		Recipient:   notification.Recipient.String(),
		Sender:      sender,
		Type:        string(notification.Type),
		Title:       notification.Title,
		Message:     notification.Message,
		RelatedTask: notification.RelatedTask.String(),
		Priority:    string(notification.Priority),
		Data:        notification.Data,
		IsRead:      notification.IsRead,
		CreatedAt:   notification.CreatedAt,
	}
}
