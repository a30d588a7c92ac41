package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/events"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
)

// FanoutHandler consumes history_recorded events and turns each one into
// per-recipient notification rows. It re-loads the history entry and the
// task snapshot itself so it always works from committed state, and writes
// all notifications for one event in a single transaction.
//
// A vanished entry, task, or actor abandons that event's fan-out with a log
// line and no error: history is authoritative, notification delivery is
// best-effort relative to it.
type FanoutHandler struct {
	db                *sql.DB
	historyStore      store.HistoryStore
	taskStore         store.TaskStore
	userStore         store.UserStore
	notificationStore store.NotificationStore
	logger            *slog.Logger

	// runInTx defaults to store.RunInTransaction; injectable for testing.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewFanoutHandler creates a new FanoutHandler.
// It returns an error if any of the required dependencies are nil.
func NewFanoutHandler(
	db *sql.DB,
	historyStore store.HistoryStore,
	taskStore store.TaskStore,
	userStore store.UserStore,
	notificationStore store.NotificationStore,
	logger *slog.Logger,
) (*FanoutHandler, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if historyStore == nil {
		return nil, errors.New("historyStore cannot be nil")
	}
	if taskStore == nil {
		return nil, errors.New("taskStore cannot be nil")
	}
	if userStore == nil {
		return nil, errors.New("userStore cannot be nil")
	}
	if notificationStore == nil {
		return nil, errors.New("notificationStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FanoutHandler{
		db:                db,
		historyStore:      historyStore,
		taskStore:         taskStore,
		userStore:         userStore,
		notificationStore: notificationStore,
		logger:            logger.With("component", "notification_fanout"),
		runInTx:           store.RunInTransaction,
	}, nil
}

// HandleEvent processes a history_recorded event: resolve recipients,
// render content, insert one notification per recipient. Events of any
// other type are ignored.
func (h *FanoutHandler) HandleEvent(ctx context.Context, event *events.ActivityEvent) error {
	if event.Type != events.EventHistoryRecorded {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.HistoryRecordedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log := logger.FromContextOrDefault(ctx, h.logger)

	entry, err := h.historyStore.GetByID(ctx, payload.HistoryID)
	if err != nil {
		if errors.Is(err, store.ErrHistoryNotFound) {
			log.Warn("history entry vanished before fan-out, abandoning event",
				"history_id", payload.HistoryID,
				"event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to load history entry: %w", err)
	}

	task, err := h.taskStore.GetByID(ctx, entry.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Warn("task vanished before fan-out, abandoning event",
				"task_id", entry.TaskID,
				"history_id", entry.ID,
				"event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to load task snapshot: %w", err)
	}

	recipients := ResolveRecipients(ctx, entry, task)
	if len(recipients) == 0 {
		log.Debug("event resolved to no recipients",
			"action", entry.Action,
			"history_id", entry.ID)
		return nil
	}

	actor, err := h.userStore.GetByID(ctx, entry.PerformedBy)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("actor vanished before fan-out, abandoning event",
				"actor_id", entry.PerformedBy,
				"history_id", entry.ID,
				"event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to load actor: %w", err)
	}

	content := RenderContent(entry, task, actor.Name)
	notificationType := TypeForAction(entry.Action)

	senderID := entry.PerformedBy
	historyID := entry.ID
	data := domain.NotificationData{
		HistoryID:    &historyID,
		Action:       entry.Action,
		Changes:      entry.Changes,
		TaskTitle:    task.Title,
		TaskPriority: task.Priority,
	}

	notifications := make([]*domain.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		notification, err := domain.NewNotification(
			recipient,
			notificationType,
			content.Title,
			content.Message,
			task.ID,
			content.Priority,
		)
		if err != nil {
			return fmt.Errorf("failed to build notification: %w", err)
		}
		notification.Sender = &senderID
		notification.Data = data
		notifications = append(notifications, notification)
	}

	// All recipients of one event get their rows in one transaction.
	err = h.runInTx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := h.notificationStore.WithTx(tx)
		for _, notification := range notifications {
			if err := txStore.Create(ctx, notification); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}

	log.Info("fanned out history entry",
		"history_id", entry.ID,
		"action", entry.Action,
		"task_id", task.ID,
		"notification_count", len(notifications))
	return nil
}

// Ensure FanoutHandler implements events.EventHandler
var _ events.EventHandler = (*FanoutHandler)(nil)
