package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// reminderDayFormat is the calendar-day key used by the reminder dedup index.
const reminderDayFormat = "2006-01-02"

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend. Reminder deduplication
// rides on a partial unique index over (recipient, type, task, calendar day);
// the day key is a storage detail and never leaves this package.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
// It validates the notification and saves it to the database. Reminder types
// carry a calendar-day key so the unique index can suppress a second reminder
// of the same type for the same task, recipient, and day; a suppressed insert
// surfaces as store.ErrDuplicateReminder.
// Returns store.ErrTaskNotFound if the related task does not exist.
// Returns store.ErrUserNotFound if the recipient or sender does not exist.
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during creation",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	dataJSON, err := json.Marshal(notification.Data)
	if err != nil {
		log.Error("failed to encode notification data",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	var reminderDay any
	if notification.IsReminder() {
		reminderDay = notification.CreatedAt.UTC().Format(reminderDayFormat)
	}

	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message,
			related_task_id, priority, data, is_read, reminder_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (recipient_id, type, related_task_id, reminder_day)
			WHERE reminder_day IS NOT NULL
			DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.Recipient,
		notification.Sender,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.RelatedTask,
		notification.Priority,
		dataJSON,
		notification.IsRead,
		reminderDay,
		notification.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			if strings.Contains(constraintName(err), "task") {
				log.Warn("unknown task during notification creation",
					slog.String("notification_id", notification.ID.String()),
					slog.String("related_task_id", notification.RelatedTask.String()))
				return store.ErrTaskNotFound
			}
			log.Warn("unknown user during notification creation",
				slog.String("notification_id", notification.ID.String()),
				slog.String("recipient_id", notification.Recipient.String()))
			return store.ErrUserNotFound
		}

		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after notification insert",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	if rowsAffected == 0 && notification.IsReminder() {
		log.Debug("duplicate reminder suppressed",
			slog.String("recipient_id", notification.Recipient.String()),
			slog.String("type", string(notification.Type)),
			slog.String("related_task_id", notification.RelatedTask.String()))
		return store.ErrDuplicateReminder
	}

	log.Info("notification created successfully",
		slog.String("notification_id", notification.ID.String()),
		slog.String("recipient_id", notification.Recipient.String()),
		slog.String("type", string(notification.Type)))
	return nil
}

// GetByID implements store.NotificationStore.GetByID
// It retrieves a notification by its unique ID.
// Returns store.ErrNotificationNotFound if the notification does not exist.
func (s *PostgresNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, recipient_id, sender_id, type, title, message,
			related_task_id, priority, data, is_read, created_at
		FROM notifications
		WHERE id = $1
	`

	notification, err := scanNotification(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("notification not found", slog.String("notification_id", id.String()))
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to get notification by ID",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, MapError(err)
	}

	return notification, nil
}

// MarkRead implements store.NotificationStore.MarkRead
// It marks the notification as read, provided it belongs to the given user,
// and returns the updated notification. Marking an already-read notification
// is a no-op that still succeeds.
// Returns store.ErrNotificationNotFound if no notification with that ID
// belongs to that user.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, sender_id, type, title, message,
			related_task_id, priority, data, is_read, created_at
	`

	notification, err := scanNotification(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("notification not found for user during mark read",
				slog.String("notification_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, MapError(err)
	}

	log.Debug("notification marked read",
		slog.String("notification_id", id.String()),
		slog.String("user_id", userID.String()))
	return notification, nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
// It marks every unread notification belonging to the user as read and
// returns the number of notifications modified.
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE recipient_id = $1 AND NOT is_read
	`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to mark all notifications read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after mark all read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	log.Debug("all notifications marked read",
		slog.String("user_id", userID.String()),
		slog.Int64("count", rowsAffected))
	return rowsAffected, nil
}

// ListForUser implements store.NotificationStore.ListForUser
// It retrieves one page of the user's notifications, newest first, filtered
// per opts, along with the total number of matches across all pages.
func (s *PostgresNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]domain.Notification, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	opts = opts.Normalize()

	conditions := []string{"recipient_id = $1"}
	args := []any{userID}

	if opts.UnreadOnly {
		conditions = append(conditions, "NOT is_read")
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, recipient_id, sender_id, type, title, message,
			related_task_id, priority, data, is_read, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		log.Error("failed to query notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notifications := []domain.Notification{}
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			log.Error("failed to scan notification row",
				slog.String("error", err.Error()))
			return nil, 0, err
		}
		notifications = append(notifications, *notification)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning notification rows",
			slog.String("error", err.Error()))
		return nil, 0, err
	}

	return notifications, total, nil
}

// CountUnread implements store.NotificationStore.CountUnread
// It returns the number of unread notifications for the user.
func (s *PostgresNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND NOT is_read
	`

	var count int64
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		log.Error("failed to count unread notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.NotificationStore.WithTx
// It returns a new store instance running its queries on the given transaction.
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanNotification reads one notification row, decoding the JSONB data
// payload. The caller handles sql.ErrNoRows.
func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var sender uuid.NullUUID
	var ntype, priority string
	var dataJSON []byte

	err := row.Scan(
		&n.ID,
		&n.Recipient,
		&sender,
		&ntype,
		&n.Title,
		&n.Message,
		&n.RelatedTask,
		&priority,
		&dataJSON,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sender.Valid {
		n.Sender = &sender.UUID
	}
	n.Type = domain.NotificationType(ntype)
	n.Priority = domain.NotificationPriority(priority)

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to decode notification data: %w", err)
		}
	}

	return &n, nil
}
