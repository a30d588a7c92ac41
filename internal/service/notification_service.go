package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// NotificationServiceError is a custom error type for notification service errors.
type NotificationServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for NotificationServiceError.
func (e *NotificationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notification service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("notification service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *NotificationServiceError) Unwrap() error {
	return e.Err
}

// NewNotificationServiceError creates a new NotificationServiceError.
// Sentinel errors the API layer matches on pass through unchanged.
func NewNotificationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrNotificationNotFound) {
		return err
	}

	return &NotificationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// NotificationPage is one page of a user's notifications plus the
// pagination metadata the API returns alongside it.
type NotificationPage struct {
	Items      []domain.Notification
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// NotificationInbox defines the per-user notification operations the API
// layer depends on. *NotificationService is the production implementation.
type NotificationInbox interface {
	List(ctx context.Context, userID uuid.UUID, opts store.ListOptions) (*NotificationPage, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationService answers per-user notification reads and owns the
// read/unread transition.
type NotificationService struct {
	notificationStore store.NotificationStore
	logger            *slog.Logger
}

// Ensure NotificationService implements NotificationInbox
var _ NotificationInbox = (*NotificationService)(nil)

// NewNotificationService creates a new NotificationService.
// It returns an error if any of the required dependencies are nil.
func NewNotificationService(
	notificationStore store.NotificationStore,
	logger *slog.Logger,
) (*NotificationService, error) {
	if notificationStore == nil {
		return nil, &NotificationServiceError{
			Operation: "create_service",
			Message:   "notificationStore cannot be nil",
			Err:       nil,
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		notificationStore: notificationStore,
		logger:            logger.With(slog.String("component", "notification_service")),
	}, nil
}

// List returns one page of the user's notifications, newest first.
func (s *NotificationService) List(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) (*NotificationPage, error) {
	opts = opts.Normalize()

	items, total, err := s.notificationStore.ListForUser(ctx, userID, opts)
	if err != nil {
		return nil, NewNotificationServiceError("list", "failed to list notifications", err)
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit != 0 {
		totalPages++
	}

	return &NotificationPage{
		Items:      items,
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationStore.CountUnread(ctx, userID)
	if err != nil {
		return 0, NewNotificationServiceError("unread_count", "failed to count unread notifications", err)
	}
	return count, nil
}

// MarkRead marks one notification as read for its owner and returns the
// updated notification. A notification that does not exist or belongs to
// someone else surfaces as store.ErrNotificationNotFound either way.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	notificationID, userID uuid.UUID,
) (*domain.Notification, error) {
	notification, err := s.notificationStore.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return nil, NewNotificationServiceError("mark_read", "failed to mark notification read", err)
	}
	return notification, nil
}

// MarkAllRead marks every unread notification for the user as read and
// returns how many were modified.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	modified, err := s.notificationStore.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, NewNotificationServiceError("mark_all_read", "failed to mark notifications read", err)
	}

	log.Debug("marked all notifications read",
		"user_id", userID,
		"modified_count", modified)
	return modified, nil
}
