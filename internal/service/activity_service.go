package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/events"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// ActivityServiceError is a custom error type for activity service errors.
type ActivityServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ActivityServiceError.
func (e *ActivityServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("activity service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("activity service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ActivityServiceError) Unwrap() error {
	return e.Err
}

// NewActivityServiceError creates a new ActivityServiceError.
func NewActivityServiceError(operation, message string, err error) *ActivityServiceError {
	return &ActivityServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// RecordTaskEventParams carries everything needed to append one history
// entry. Changes, Metadata, TransferDetails, and StatusChange are optional;
// the action decides which of them are allowed.
type RecordTaskEventParams struct {
	TaskID          uuid.UUID
	Action          domain.Action
	PerformedBy     uuid.UUID
	Changes         []domain.Change
	Metadata        map[string]string
	TransferDetails *domain.TransferDetails
	StatusChange    *domain.StatusChange
}

// ActivityLog defines the history operations the API layer depends on.
// *ActivityService is the production implementation.
type ActivityLog interface {
	RecordTaskEvent(ctx context.Context, params RecordTaskEventParams) (*domain.HistoryEntry, error)
	ListTaskHistory(ctx context.Context, taskID uuid.UUID, limit int) ([]domain.HistoryEntry, error)
	ListActorHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, error)
}

// ActivityService records task events and answers history queries. The
// history append is the authoritative write; publishing the recorded entry
// for notification fan-out is best-effort and never fails the recording.
type ActivityService struct {
	historyStore store.HistoryStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// Ensure ActivityService implements ActivityLog
var _ ActivityLog = (*ActivityService)(nil)

// NewActivityService creates a new ActivityService.
// It returns an error if any of the required dependencies are nil.
func NewActivityService(
	historyStore store.HistoryStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (*ActivityService, error) {
	if historyStore == nil {
		return nil, &ActivityServiceError{
			Operation: "create_service",
			Message:   "historyStore cannot be nil",
			Err:       nil,
		}
	}
	if eventEmitter == nil {
		return nil, &ActivityServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
			Err:       nil,
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ActivityService{
		historyStore: historyStore,
		eventEmitter: eventEmitter,
		logger:       logger.With(slog.String("component", "activity_service")),
	}, nil
}

// RecordTaskEvent validates and appends a history entry, then publishes it
// for fan-out. Validation failures reject the whole entry before any write.
// A publish failure is logged and swallowed: the entry is already durable
// and remains the source of truth.
func (s *ActivityService) RecordTaskEvent(
	ctx context.Context,
	params RecordTaskEventParams,
) (*domain.HistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := domain.NewHistoryEntry(params.TaskID, params.PerformedBy, params.Action)
	if err != nil {
		return nil, NewActivityServiceError("record_task_event", "invalid history entry", err)
	}

	entry.Changes = params.Changes
	entry.Metadata = params.Metadata
	entry.TransferDetails = params.TransferDetails
	entry.StatusChange = params.StatusChange
	if err := entry.Validate(); err != nil {
		return nil, NewActivityServiceError("record_task_event", "invalid history entry", err)
	}

	if err := s.historyStore.Append(ctx, entry); err != nil {
		log.Error("failed to append history entry",
			"error", err,
			"task_id", params.TaskID,
			"action", params.Action)
		return nil, NewActivityServiceError("record_task_event", "failed to append history entry", err)
	}

	log.Debug("recorded history entry",
		"history_id", entry.ID,
		"task_id", entry.TaskID,
		"action", entry.Action)

	s.publishRecorded(ctx, entry)
	return entry, nil
}

// ListTaskHistory returns up to limit entries for one task, newest first.
func (s *ActivityService) ListTaskHistory(
	ctx context.Context,
	taskID uuid.UUID,
	limit int,
) ([]domain.HistoryEntry, error) {
	entries, err := s.historyStore.ListByTask(ctx, taskID, limit)
	if err != nil {
		return nil, NewActivityServiceError("list_task_history", "failed to list history entries", err)
	}
	return entries, nil
}

// ListActorHistory returns up to limit entries performed by one user,
// newest first.
func (s *ActivityService) ListActorHistory(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.HistoryEntry, error) {
	entries, err := s.historyStore.ListByActor(ctx, userID, limit)
	if err != nil {
		return nil, NewActivityServiceError("list_actor_history", "failed to list history entries", err)
	}
	return entries, nil
}

// publishRecorded emits a history_recorded event for an already-committed
// entry. Failures only get logged.
func (s *ActivityService) publishRecorded(ctx context.Context, entry *domain.HistoryEntry) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewActivityEvent(events.EventHistoryRecorded, events.HistoryRecordedPayload{
		HistoryID: entry.ID,
		TaskID:    entry.TaskID,
	})
	if err != nil {
		log.Error("failed to build history_recorded event",
			"error", err,
			"history_id", entry.ID)
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Warn("notification fan-out failed, history entry remains recorded",
			"error", err,
			"history_id", entry.ID,
			"task_id", entry.TaskID)
	}
}
