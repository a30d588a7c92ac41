package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
)

// deadlineDisplayFormat is how deadline values are shown inside messages.
const deadlineDisplayFormat = "January 2, 2006"

// deadlineParseLayouts are tried in order when a deadline change value is
// rendered. Values that match none of them are shown as-is.
var deadlineParseLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Content is the rendered body of one notification: what the recipient
// reads plus the urgency it is surfaced with.
type Content struct {
	Title    string
	Message  string
	Priority domain.NotificationPriority
}

// RenderContent produces the title, message, and notification priority for
// a history entry against a task snapshot. actorName is the display name of
// the user who performed the action.
//
// Pure function of its inputs; safe to call once per event and reuse for
// every recipient.
func RenderContent(entry *domain.HistoryEntry, task *domain.Task, actorName string) Content {
	return Content{
		Title:    renderTitle(entry.Action, task.Title),
		Message:  renderMessage(entry, task.Title, actorName),
		Priority: PriorityForAction(entry.Action, task.Priority),
	}
}

// TypeForAction maps a history action to the notification category it is
// filed under. The mapping is many-to-one; actions without a dedicated
// category land in the status_changed default.
func TypeForAction(action domain.Action) domain.NotificationType {
	switch action {
	case domain.ActionCreated, domain.ActionAssigned:
		return domain.NotificationTypeTaskAssigned
	case domain.ActionStatusChanged:
		return domain.NotificationTypeStatusChanged
	case domain.ActionStageChanged:
		return domain.NotificationTypeStageChanged
	case domain.ActionTransferred:
		return domain.NotificationTypeTaskTransferred
	case domain.ActionCompleted:
		return domain.NotificationTypeTaskCompleted
	case domain.ActionApproved:
		return domain.NotificationTypeTaskApproved
	case domain.ActionRejected:
		return domain.NotificationTypeTaskRejected
	case domain.ActionDeadlineChanged, domain.ActionPriorityChanged,
		domain.ActionAttachmentAdded, domain.ActionAttachmentRemoved:
		return domain.NotificationTypeStatusChanged
	default:
		return domain.NotificationTypeStatusChanged
	}
}

// PriorityForAction computes the notification priority for an action on a
// task with the given priority. Workflow-terminal actions (completed,
// approved, rejected, transferred) are always high; otherwise the task's
// own urgency escalates the notification. Action-based escalation wins over
// task priority.
func PriorityForAction(action domain.Action, taskPriority domain.TaskPriority) domain.NotificationPriority {
	switch action {
	case domain.ActionCompleted, domain.ActionApproved,
		domain.ActionRejected, domain.ActionTransferred:
		return domain.NotificationPriorityHigh
	}

	switch taskPriority {
	case domain.TaskPriorityUrgent:
		return domain.NotificationPriorityUrgent
	case domain.TaskPriorityHigh:
		return domain.NotificationPriorityHigh
	default:
		return domain.NotificationPriorityMedium
	}
}

// renderTitle produces the per-action notification title.
func renderTitle(action domain.Action, taskTitle string) string {
	switch action {
	case domain.ActionCreated, domain.ActionAssigned:
		return "New Task Assigned: " + taskTitle
	case domain.ActionStatusChanged:
		return "Task Status Updated: " + taskTitle
	case domain.ActionStageChanged:
		return "Task Progress Updated: " + taskTitle
	case domain.ActionTransferred:
		return "Task Transferred: " + taskTitle
	case domain.ActionCompleted:
		return "Task Completed: " + taskTitle
	case domain.ActionApproved:
		return "Task Approved: " + taskTitle
	case domain.ActionRejected:
		return "Task Rejected: " + taskTitle
	case domain.ActionDeadlineChanged:
		return "Task Deadline Changed: " + taskTitle
	case domain.ActionPriorityChanged:
		return "Task Priority Changed: " + taskTitle
	case domain.ActionAttachmentAdded:
		return "Attachment Added: " + taskTitle
	case domain.ActionAttachmentRemoved:
		return "Attachment Removed: " + taskTitle
	default:
		return "Task Updated: " + taskTitle
	}
}

// renderMessage produces the per-action notification message. Four actions
// render structured sub-fields from the entry; the rest interpolate only
// the actor name and task title.
func renderMessage(entry *domain.HistoryEntry, taskTitle, actorName string) string {
	switch entry.Action {
	case domain.ActionCreated, domain.ActionAssigned:
		return fmt.Sprintf("%s assigned you a new task %q", actorName, taskTitle)

	case domain.ActionStatusChanged:
		if sc := entry.StatusChange; sc != nil && sc.From != "" && sc.To != "" {
			return fmt.Sprintf("%s changed status of %q from %s to %s",
				actorName, taskTitle,
				strings.ToUpper(string(sc.From)),
				strings.ToUpper(string(sc.To)))
		}
		return fmt.Sprintf("%s updated the status of %q", actorName, taskTitle)

	case domain.ActionStageChanged:
		switch stage := entry.FirstNewValue(); {
		case stage == string(domain.TaskStageDone):
			return fmt.Sprintf("%s marked %q as done", actorName, taskTitle)
		case stage != "":
			return fmt.Sprintf("%s moved %q to the %s stage",
				actorName, taskTitle, upperSpaced(stage))
		default:
			return fmt.Sprintf("%s updated the progress of %q", actorName, taskTitle)
		}

	case domain.ActionTransferred:
		return fmt.Sprintf("%s transferred the task %q", actorName, taskTitle)

	case domain.ActionCompleted:
		return fmt.Sprintf("%s marked the task %q as completed", actorName, taskTitle)

	case domain.ActionApproved:
		return fmt.Sprintf("%s approved the task %q", actorName, taskTitle)

	case domain.ActionRejected:
		return fmt.Sprintf("%s rejected the task %q", actorName, taskTitle)

	case domain.ActionDeadlineChanged:
		if v := entry.FirstNewValue(); v != "" {
			return fmt.Sprintf("%s changed the deadline of %q to %s",
				actorName, taskTitle, formatDeadline(v))
		}
		return fmt.Sprintf("%s changed the deadline of %q", actorName, taskTitle)

	case domain.ActionPriorityChanged:
		if v := entry.FirstNewValue(); v != "" {
			return fmt.Sprintf("%s changed the priority of %q to %s",
				actorName, taskTitle, strings.ToUpper(v))
		}
		return fmt.Sprintf("%s changed the priority of %q", actorName, taskTitle)

	case domain.ActionAttachmentAdded:
		return fmt.Sprintf("%s added an attachment to %q", actorName, taskTitle)

	case domain.ActionAttachmentRemoved:
		return fmt.Sprintf("%s removed an attachment from %q", actorName, taskTitle)

	default:
		return fmt.Sprintf("%s updated the task %q", actorName, taskTitle)
	}
}

// upperSpaced turns an underscore value like "under_review" into the
// display form "UNDER REVIEW".
func upperSpaced(v string) string {
	return strings.ToUpper(strings.ReplaceAll(v, "_", " "))
}

// formatDeadline renders a recorded deadline value as a readable date.
// Values that parse under none of the known layouts are returned unchanged
// rather than dropped.
func formatDeadline(v string) string {
	for _, layout := range deadlineParseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(deadlineDisplayFormat)
		}
	}
	return v
}
