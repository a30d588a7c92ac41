package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/mocks"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationTestService(t *testing.T) (*NotificationService, *mocks.MockNotificationStore) {
	t.Helper()

	notificationStore := mocks.NewMockNotificationStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service, err := NewNotificationService(notificationStore, logger)
	require.NoError(t, err)

	return service, notificationStore
}

// seedNotification stores an unread notification created at the given time.
func seedNotification(
	t *testing.T,
	notificationStore *mocks.MockNotificationStore,
	recipient uuid.UUID,
	ntype domain.NotificationType,
	createdAt time.Time,
) *domain.Notification {
	t.Helper()

	notification, err := domain.NewNotification(
		recipient, ntype, "Task Update", "Something changed", uuid.New(),
		domain.NotificationPriorityMedium)
	require.NoError(t, err)
	notification.CreatedAt = createdAt

	require.NoError(t, notificationStore.Create(context.Background(), notification))
	return notification
}

func TestNotificationService_List(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	t.Run("pages newest first with pagination metadata", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		for i := 0; i < 5; i++ {
			seedNotification(t, notificationStore, userID,
				domain.NotificationTypeStatusChanged, base.Add(time.Duration(i)*time.Minute))
		}

		page, err := service.List(context.Background(), userID, store.ListOptions{Page: 1, Limit: 2})
		require.NoError(t, err)

		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 2, page.Limit)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 2)
		assert.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt),
			"newest notification comes first")
	})

	t.Run("zero options fall back to defaults", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		for i := 0; i < 3; i++ {
			seedNotification(t, notificationStore, userID,
				domain.NotificationTypeTaskAssigned, base.Add(time.Duration(i)*time.Minute))
		}

		page, err := service.List(context.Background(), userID, store.ListOptions{})
		require.NoError(t, err)

		assert.Equal(t, 1, page.Page)
		assert.Equal(t, store.DefaultListLimit, page.Limit)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 1, page.TotalPages)
		assert.Len(t, page.Items, 3)
	})

	t.Run("unread filter hides read notifications", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		read := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base)
		read.IsRead = true
		unread := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base.Add(time.Minute))

		page, err := service.List(context.Background(), userID, store.ListOptions{UnreadOnly: true})
		require.NoError(t, err)

		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, unread.ID, page.Items[0].ID)
	})

	t.Run("type filter keeps a single type", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base)
		approved := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskApproved, base.Add(time.Minute))

		page, err := service.List(context.Background(), userID,
			store.ListOptions{Type: domain.NotificationTypeTaskApproved})
		require.NoError(t, err)

		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, approved.ID, page.Items[0].ID)
	})

	t.Run("page past the end is empty but keeps the total", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		for i := 0; i < 3; i++ {
			seedNotification(t, notificationStore, userID,
				domain.NotificationTypeStageChanged, base.Add(time.Duration(i)*time.Minute))
		}

		page, err := service.List(context.Background(), userID, store.ListOptions{Page: 5, Limit: 2})
		require.NoError(t, err)

		assert.Empty(t, page.Items)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		notificationStore.ListForUserFn = func(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]domain.Notification, int64, error) {
			return nil, 0, errors.New("connection reset")
		}

		_, err := service.List(context.Background(), uuid.New(), store.ListOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list notifications")
	})
}

func TestNotificationService_UnreadCount(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	t.Run("counts only the user's unread notifications", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		otherID := uuid.New()
		seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base)
		read := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base.Add(time.Minute))
		read.IsRead = true
		seedNotification(t, notificationStore, otherID,
			domain.NotificationTypeTaskAssigned, base)

		count, err := service.UnreadCount(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		notificationStore.CountUnreadFn = func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 0, errors.New("connection reset")
		}

		_, err := service.UnreadCount(context.Background(), uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count unread notifications")
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	t.Run("marks own notification read", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		notification := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskApproved, base)

		updated, err := service.MarkRead(context.Background(), notification.ID, userID)
		require.NoError(t, err)
		assert.True(t, updated.IsRead)

		count, err := service.UnreadCount(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("someone else's notification looks absent", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		owner := uuid.New()
		notification := seedNotification(t, notificationStore, owner,
			domain.NotificationTypeTaskApproved, base)

		_, err := service.MarkRead(context.Background(), notification.ID, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotificationNotFound)
		assert.False(t, notification.IsRead)
	})

	t.Run("unknown notification passes the sentinel through", func(t *testing.T) {
		service, _ := newNotificationTestService(t)

		_, err := service.MarkRead(context.Background(), uuid.New(), uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotificationNotFound)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	t.Run("clears the unread count", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		otherID := uuid.New()
		for i := 0; i < 3; i++ {
			seedNotification(t, notificationStore, userID,
				domain.NotificationTypeStatusChanged, base.Add(time.Duration(i)*time.Minute))
		}
		already := seedNotification(t, notificationStore, userID,
			domain.NotificationTypeTaskAssigned, base)
		already.IsRead = true
		seedNotification(t, notificationStore, otherID,
			domain.NotificationTypeTaskAssigned, base)

		modified, err := service.MarkAllRead(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), modified)

		count, err := service.UnreadCount(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		otherCount, err := service.UnreadCount(context.Background(), otherID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), otherCount, "other users are untouched")
	})

	t.Run("second pass modifies nothing", func(t *testing.T) {
		service, notificationStore := newNotificationTestService(t)
		userID := uuid.New()
		seedNotification(t, notificationStore, userID,
			domain.NotificationTypeStatusChanged, base)

		_, err := service.MarkAllRead(context.Background(), userID)
		require.NoError(t, err)

		modified, err := service.MarkAllRead(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), modified)
	})
}

func TestNewNotificationService_Validation(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil store", func(t *testing.T) {
		_, err := NewNotificationService(nil, slog.Default())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notificationStore cannot be nil")
	})

	t.Run("defaults nil logger", func(t *testing.T) {
		service, err := NewNotificationService(mocks.NewMockNotificationStore(), nil)
		require.NoError(t, err)
		assert.NotNil(t, service)
	})
}
