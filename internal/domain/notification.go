package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType is the category a notification is filed under. Types are
// derived from history actions through a fixed many-to-one mapping, plus the
// two reminder types the scheduler emits directly.
type NotificationType string

// Possible notification types.
const (
	NotificationTypeTaskAssigned     NotificationType = "task_assigned"
	NotificationTypeStatusChanged    NotificationType = "status_changed"
	NotificationTypeStageChanged     NotificationType = "stage_changed"
	NotificationTypeTaskTransferred  NotificationType = "task_transferred"
	NotificationTypeTaskCompleted    NotificationType = "task_completed"
	NotificationTypeTaskApproved     NotificationType = "task_approved"
	NotificationTypeTaskRejected     NotificationType = "task_rejected"
	NotificationTypeDeadlineReminder NotificationType = "task_deadline_reminder"
	NotificationTypeTaskOverdue      NotificationType = "task_overdue"
)

// NotificationPriority represents how urgently a notification should be
// surfaced. It is computed per notification and is distinct from the
// priority of the task it refers to.
type NotificationPriority string

// Possible notification priorities.
const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// Notification-specific validation errors.
var (
	// ErrNotificationIDEmpty is returned when a notification ID is empty or nil.
	ErrNotificationIDEmpty = errors.New("notification ID cannot be empty")

	// ErrNotificationRecipientEmpty is returned when a notification has no
	// recipient.
	ErrNotificationRecipientEmpty = errors.New("notification recipient cannot be empty")

	// ErrNotificationTaskEmpty is returned when a notification references no task.
	ErrNotificationTaskEmpty = errors.New("notification task ID cannot be empty")

	// ErrNotificationTitleEmpty is returned when a notification title is empty.
	ErrNotificationTitleEmpty = errors.New("notification title cannot be empty")

	// ErrNotificationMessageEmpty is returned when a notification message is empty.
	ErrNotificationMessageEmpty = errors.New("notification message cannot be empty")
)

// NotificationData is the structured payload attached to a notification so
// clients can render detail without joining back to the history or task
// tables. HistoryID is nil for scheduler-generated reminders, which have no
// originating history entry.
type NotificationData struct {
	HistoryID    *uuid.UUID   `json:"history_id,omitempty"`
	Action       Action       `json:"action,omitempty"`
	Changes      []Change     `json:"changes,omitempty"`
	TaskTitle    string       `json:"task_title,omitempty"`
	TaskPriority TaskPriority `json:"task_priority,omitempty"`
	Deadline     *time.Time   `json:"deadline,omitempty"`
}

// Notification is one derived alert for one recipient. A single history
// entry fans out to zero or more notifications; reminder notifications are
// created by the scheduler without any history entry and carry no sender.
type Notification struct {
	ID          uuid.UUID            `json:"id"`
	Recipient   uuid.UUID            `json:"recipient"`
	Sender      *uuid.UUID           `json:"sender,omitempty"`
	Type        NotificationType     `json:"type"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	RelatedTask uuid.UUID            `json:"related_task"`
	Priority    NotificationPriority `json:"priority"`
	Data        NotificationData     `json:"data"`
	IsRead      bool                 `json:"is_read"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewNotification creates a new unread Notification for the given recipient,
// category, and task. It generates a new UUID for the notification ID and
// stamps CreatedAt with the current time.
// Returns an error if validation fails.
func NewNotification(
	recipient uuid.UUID,
	ntype NotificationType,
	title, message string,
	relatedTask uuid.UUID,
	priority NotificationPriority,
) (*Notification, error) {
	notification := &Notification{
		ID:          uuid.New(),
		Recipient:   recipient,
		Type:        ntype,
		Title:       title,
		Message:     message,
		RelatedTask: relatedTask,
		Priority:    priority,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNotificationIDEmpty
	}

	if n.Recipient == uuid.Nil {
		return ErrNotificationRecipientEmpty
	}

	if n.RelatedTask == uuid.Nil {
		return ErrNotificationTaskEmpty
	}

	if n.Title == "" {
		return ErrNotificationTitleEmpty
	}

	if n.Message == "" {
		return ErrNotificationMessageEmpty
	}

	if !isValidNotificationType(n.Type) {
		return ErrInvalidNotificationType
	}

	if !isValidNotificationPriority(n.Priority) {
		return ErrInvalidNotificationPriority
	}

	return nil
}

// IsReminder reports whether the notification belongs to one of the
// scheduler-generated reminder categories, which are subject to the
// once-per-day dedup rule.
func (n *Notification) IsReminder() bool {
	return IsReminderType(n.Type)
}

// IsReminderType reports whether the given type is one of the reminder
// categories emitted by the scheduler.
func IsReminderType(t NotificationType) bool {
	return t == NotificationTypeDeadlineReminder || t == NotificationTypeTaskOverdue
}

// isValidNotificationType checks if the given type is a valid NotificationType.
func isValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeTaskAssigned, NotificationTypeStatusChanged,
		NotificationTypeStageChanged, NotificationTypeTaskTransferred,
		NotificationTypeTaskCompleted, NotificationTypeTaskApproved,
		NotificationTypeTaskRejected, NotificationTypeDeadlineReminder,
		NotificationTypeTaskOverdue:
		return true
	default:
		return false
	}
}

// isValidNotificationPriority checks if the given priority is a valid
// NotificationPriority.
func isValidNotificationPriority(p NotificationPriority) bool {
	switch p {
	case NotificationPriorityLow, NotificationPriorityMedium,
		NotificationPriorityHigh, NotificationPriorityUrgent:
		return true
	default:
		return false
	}
}
