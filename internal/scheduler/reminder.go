package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// DefaultDeadlineWindow is how far ahead the deadline sweep looks.
const DefaultDeadlineWindow = 24 * time.Hour

// deadlineFormat is how due dates are shown inside reminder messages.
const deadlineFormat = "January 2, 2006"

// SweepRunner defines the sweep operations the API layer depends on.
// *ReminderService is the production implementation.
type SweepRunner interface {
	RunDeadlineSweep(ctx context.Context) ([]*domain.Notification, error)
	RunOverdueSweep(ctx context.Context) ([]*domain.Notification, error)
}

// ReminderService runs the two reminder sweeps. Each notification is
// written independently so one failing (task, user) pair never aborts the
// remainder of a sweep; duplicates within a calendar day are rejected by
// the store and silently skipped.
type ReminderService struct {
	taskStore         store.TaskStore
	notificationStore store.NotificationStore
	logger            *slog.Logger

	// window is how far ahead of now the deadline sweep scans.
	window time.Duration

	// timeFunc returns the sweep's time basis; injectable for testing.
	timeFunc func() time.Time
}

// Ensure ReminderService implements SweepRunner
var _ SweepRunner = (*ReminderService)(nil)

// NewReminderService creates a new ReminderService.
// It returns an error if any of the required dependencies are nil.
func NewReminderService(
	taskStore store.TaskStore,
	notificationStore store.NotificationStore,
	logger *slog.Logger,
) (*ReminderService, error) {
	if taskStore == nil {
		return nil, errors.New("taskStore cannot be nil")
	}
	if notificationStore == nil {
		return nil, errors.New("notificationStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderService{
		taskStore:         taskStore,
		notificationStore: notificationStore,
		logger:            logger.With("component", "reminder_service"),
		window:            DefaultDeadlineWindow,
		timeFunc:          time.Now,
	}, nil
}

// RunDeadlineSweep reminds every assignee of an unfinished task whose
// deadline falls within the next window. It returns the notifications
// created in this run; re-running within the same day returns none.
func (s *ReminderService) RunDeadlineSweep(ctx context.Context) ([]*domain.Notification, error) {
	now := s.timeFunc().UTC()

	tasks, err := s.taskStore.ListDeadlineBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks with approaching deadlines: %w", err)
	}

	created := s.remindAssignees(ctx, tasks, domain.NotificationTypeDeadlineReminder, now)

	s.logger.Info("deadline sweep finished",
		"candidate_tasks", len(tasks),
		"notifications_created", len(created))
	return created, nil
}

// RunOverdueSweep notifies every assignee of an unfinished task whose
// deadline has already passed. Same return and idempotence contract as
// RunDeadlineSweep.
func (s *ReminderService) RunOverdueSweep(ctx context.Context) ([]*domain.Notification, error) {
	now := s.timeFunc().UTC()

	tasks, err := s.taskStore.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	created := s.remindAssignees(ctx, tasks, domain.NotificationTypeTaskOverdue, now)

	s.logger.Info("overdue sweep finished",
		"candidate_tasks", len(tasks),
		"notifications_created", len(created))
	return created, nil
}

// remindAssignees writes one reminder per (task, assignee) pair, skipping
// pairs already reminded today and logging pairs that fail without
// stopping the sweep.
func (s *ReminderService) remindAssignees(
	ctx context.Context,
	tasks []domain.Task,
	notificationType domain.NotificationType,
	now time.Time,
) []*domain.Notification {
	var created []*domain.Notification

	for i := range tasks {
		task := tasks[i]
		for _, assignee := range task.AssignedTo {
			notification, err := s.buildReminder(&task, assignee, notificationType, now)
			if err != nil {
				s.logger.Error("failed to build reminder",
					"task_id", task.ID,
					"recipient_id", assignee,
					"notification_type", notificationType,
					"error", err)
				continue
			}

			err = s.notificationStore.Create(ctx, notification)
			if errors.Is(err, store.ErrDuplicateReminder) {
				s.logger.Debug("reminder already sent today",
					"task_id", task.ID,
					"recipient_id", assignee,
					"notification_type", notificationType)
				continue
			}
			if err != nil {
				s.logger.Error("failed to create reminder, continuing sweep",
					"task_id", task.ID,
					"recipient_id", assignee,
					"notification_type", notificationType,
					"error", err)
				continue
			}

			created = append(created, notification)
		}
	}

	return created
}

// buildReminder renders a system-originated reminder notification. The
// sender stays nil and CreatedAt follows the sweep clock so the dedup day
// is computed from the sweep's time basis.
func (s *ReminderService) buildReminder(
	task *domain.Task,
	recipient uuid.UUID,
	notificationType domain.NotificationType,
	now time.Time,
) (*domain.Notification, error) {
	due := ""
	if task.Deadline != nil {
		due = task.Deadline.Format(deadlineFormat)
	}

	var (
		title    string
		message  string
		priority domain.NotificationPriority
	)
	switch notificationType {
	case domain.NotificationTypeTaskOverdue:
		title = "Task Overdue: " + task.Title
		message = fmt.Sprintf("The task %q was due on %s and is now overdue", task.Title, due)
		priority = domain.NotificationPriorityUrgent
	default:
		title = "Task Deadline Approaching: " + task.Title
		message = fmt.Sprintf("The task %q is due on %s", task.Title, due)
		priority = domain.NotificationPriorityHigh
	}

	notification, err := domain.NewNotification(recipient, notificationType, title, message, task.ID, priority)
	if err != nil {
		return nil, err
	}

	notification.CreatedAt = now
	notification.Data = domain.NotificationData{
		TaskTitle:    task.Title,
		TaskPriority: task.Priority,
		Deadline:     task.Deadline,
	}

	return notification, nil
}
