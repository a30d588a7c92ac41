package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// MockNotificationStore implements store.NotificationStore for testing.
// The default implementation enforces the reminder dedup key the way the
// real store does, so scheduler idempotence tests run against the mock.
type MockNotificationStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, notification *domain.Notification) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	MarkReadFn    func(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)
	MarkAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	ListForUserFn func(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]domain.Notification, int64, error)
	CountUnreadFn func(ctx context.Context, userID uuid.UUID) (int64, error)

	// Data for default implementation
	Notifications []*domain.Notification
}

// NewMockNotificationStore creates a new mock store with initialized defaults
func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{}
}

// Create implements the NotificationStore interface
func (m *MockNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, notification)
	}

	if notification.IsReminder() {
		day := notification.CreatedAt.Format("2006-01-02")
		for _, existing := range m.Notifications {
			if existing.Recipient == notification.Recipient &&
				existing.Type == notification.Type &&
				existing.RelatedTask == notification.RelatedTask &&
				existing.CreatedAt.Format("2006-01-02") == day {
				return store.ErrDuplicateReminder
			}
		}
	}

	m.Notifications = append(m.Notifications, notification)
	return nil
}

// GetByID implements the NotificationStore interface
func (m *MockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, notification := range m.Notifications {
		if notification.ID == id {
			return notification, nil
		}
	}

	return nil, store.ErrNotificationNotFound
}

// MarkRead implements the NotificationStore interface
func (m *MockNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, id, userID)
	}

	for _, notification := range m.Notifications {
		if notification.ID == id && notification.Recipient == userID {
			notification.IsRead = true
			return notification, nil
		}
	}

	return nil, store.ErrNotificationNotFound
}

// MarkAllRead implements the NotificationStore interface
func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.MarkAllReadFn != nil {
		return m.MarkAllReadFn(ctx, userID)
	}

	var modified int64
	for _, notification := range m.Notifications {
		if notification.Recipient == userID && !notification.IsRead {
			notification.IsRead = true
			modified++
		}
	}

	return modified, nil
}

// ListForUser implements the NotificationStore interface
func (m *MockNotificationStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	opts store.ListOptions,
) ([]domain.Notification, int64, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID, opts)
	}

	opts = opts.Normalize()

	var matching []domain.Notification
	for _, notification := range m.Notifications {
		if notification.Recipient != userID {
			continue
		}
		if opts.UnreadOnly && notification.IsRead {
			continue
		}
		if opts.Type != "" && notification.Type != opts.Type {
			continue
		}
		matching = append(matching, *notification)
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	total := int64(len(matching))

	start := opts.Offset()
	if start >= len(matching) {
		return []domain.Notification{}, total, nil
	}
	end := start + opts.Limit
	if end > len(matching) {
		end = len(matching)
	}

	return matching[start:end], total, nil
}

// CountUnread implements the NotificationStore interface
func (m *MockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.CountUnreadFn != nil {
		return m.CountUnreadFn(ctx, userID)
	}

	var count int64
	for _, notification := range m.Notifications {
		if notification.Recipient == userID && !notification.IsRead {
			count++
		}
	}

	return count, nil
}

// ForRecipient returns the stored notifications for one recipient, in
// insertion order. Helper for test assertions.
func (m *MockNotificationStore) ForRecipient(userID uuid.UUID) []*domain.Notification {
	var result []*domain.Notification
	for _, notification := range m.Notifications {
		if notification.Recipient == userID {
			result = append(result, notification)
		}
	}
	return result
}

// WithTx implements the NotificationStore interface for transaction support
func (m *MockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	// For mock purposes, just return the same mock
	return m
}

// Ensure MockNotificationStore implements store.NotificationStore
var _ store.NotificationStore = (*MockNotificationStore)(nil)
