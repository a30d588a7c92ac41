package store

import (
	"context"
	"database/sql"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/google/uuid"
)

// DefaultListLimit is the page size applied when a caller does not specify one.
const DefaultListLimit = 20

// MaxListLimit caps the page size a caller may request.
const MaxListLimit = 100

// ListOptions controls pagination and filtering for notification listings.
type ListOptions struct {
	// Page is the 1-based page number. Values below 1 are treated as 1.
	Page int

	// Limit is the page size. Values below 1 fall back to DefaultListLimit;
	// values above MaxListLimit are clamped.
	Limit int

	// UnreadOnly restricts the listing to unread notifications.
	UnreadOnly bool

	// Type restricts the listing to a single notification type when set.
	Type domain.NotificationType
}

// Normalize returns a copy of the options with page and limit forced into
// their valid ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}

// Offset returns the row offset the options describe.
func (o ListOptions) Offset() int {
	n := o.Normalize()
	return (n.Page - 1) * n.Limit
}

// NotificationStore defines the interface for notification persistence.
// Notifications are created by event fan-out or the reminder scheduler and
// afterwards mutated only by the read/unread transition.
type NotificationStore interface {
	// Create saves a new notification to the store.
	// For reminder types (see domain.IsReminderType) the once-per-day dedup
	// rule applies: if a notification with the same (recipient, type, task,
	// calendar day) key already exists, Create returns ErrDuplicateReminder
	// and writes nothing. All other types are created unconditionally.
	// Returns ErrTaskNotFound if the related task does not exist.
	Create(ctx context.Context, notification *domain.Notification) error

	// GetByID retrieves a notification by its unique ID.
	// Returns ErrNotificationNotFound if the notification does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// MarkRead marks the notification as read, provided it belongs to the
	// given user. Returns the updated notification.
	// Returns ErrNotificationNotFound if no notification with that ID
	// belongs to that user; ownership misses are indistinguishable from
	// absence.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)

	// MarkAllRead marks every unread notification belonging to the user as
	// read and returns the number of notifications modified.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListForUser retrieves one page of the user's notifications, newest
	// first, filtered per opts. The second return value is the total number
	// of notifications matching the filter across all pages.
	// Returns an empty slice when the page is empty.
	ListForUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]domain.Notification, int64, error)

	// CountUnread returns the number of unread notifications for the user.
	// The count is computed from the stored rows on every call; there is no
	// separately maintained counter to drift.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new NotificationStore instance that uses the provided
	// transaction. This allows for multiple operations to be executed within
	// a single transaction. The transaction should be created and managed by
	// the caller (typically a service).
	WithTx(tx *sql.Tx) NotificationStore
}
