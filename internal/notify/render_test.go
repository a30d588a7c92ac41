package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func renderFixtureTask(priority domain.TaskPriority) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		Title:     "Fix login",
		Status:    domain.TaskStatusPending,
		Stage:     domain.TaskStageInProgress,
		Priority:  priority,
		CreatedBy: uuid.New(),
	}
}

func renderFixtureEntry(action domain.Action) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:          uuid.New(),
		TaskID:      uuid.New(),
		Action:      action,
		PerformedBy: uuid.New(),
		PerformedAt: time.Now().UTC(),
	}
}

func TestRenderContentStatusChange(t *testing.T) {
	t.Parallel()

	task := renderFixtureTask(domain.TaskPriorityMedium)
	entry := renderFixtureEntry(domain.ActionStatusChanged)
	entry.StatusChange = &domain.StatusChange{
		From: domain.TaskStatusPending,
		To:   domain.TaskStatusApproved,
	}

	got := RenderContent(entry, task, "Alice")

	assert.Equal(t, `Task Status Updated: Fix login`, got.Title)
	assert.Equal(t, `Alice changed status of "Fix login" from PENDING to APPROVED`, got.Message)
	assert.Equal(t, domain.NotificationPriorityMedium, got.Priority)
}

func TestRenderContentMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   func() *domain.HistoryEntry
		want    string
	}{
		{
			name:  "created",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionCreated) },
			want:  `Bob assigned you a new task "Fix login"`,
		},
		{
			name:  "assigned",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionAssigned) },
			want:  `Bob assigned you a new task "Fix login"`,
		},
		{
			name: "status change without recorded transition",
			entry: func() *domain.HistoryEntry {
				return renderFixtureEntry(domain.ActionStatusChanged)
			},
			want: `Bob updated the status of "Fix login"`,
		},
		{
			name: "stage moved to done",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionStageChanged)
				e.Changes = []domain.Change{{Field: "stage", OldValue: "under_review", NewValue: "done"}}
				return e
			},
			want: `Bob marked "Fix login" as done`,
		},
		{
			name: "stage moved to intermediate stage",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionStageChanged)
				e.Changes = []domain.Change{{Field: "stage", OldValue: "in_progress", NewValue: "under_review"}}
				return e
			},
			want: `Bob moved "Fix login" to the UNDER REVIEW stage`,
		},
		{
			name: "stage change without recorded value",
			entry: func() *domain.HistoryEntry {
				return renderFixtureEntry(domain.ActionStageChanged)
			},
			want: `Bob updated the progress of "Fix login"`,
		},
		{
			name:  "transferred",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionTransferred) },
			want:  `Bob transferred the task "Fix login"`,
		},
		{
			name:  "completed",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionCompleted) },
			want:  `Bob marked the task "Fix login" as completed`,
		},
		{
			name:  "approved",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionApproved) },
			want:  `Bob approved the task "Fix login"`,
		},
		{
			name:  "rejected",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionRejected) },
			want:  `Bob rejected the task "Fix login"`,
		},
		{
			name: "deadline changed with RFC3339 value",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionDeadlineChanged)
				e.Changes = []domain.Change{{Field: "deadline", NewValue: "2026-09-15T17:00:00Z"}}
				return e
			},
			want: `Bob changed the deadline of "Fix login" to September 15, 2026`,
		},
		{
			name: "deadline changed with date-only value",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionDeadlineChanged)
				e.Changes = []domain.Change{{Field: "deadline", NewValue: "2026-03-01"}}
				return e
			},
			want: `Bob changed the deadline of "Fix login" to March 1, 2026`,
		},
		{
			name: "deadline changed with unparseable value",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionDeadlineChanged)
				e.Changes = []domain.Change{{Field: "deadline", NewValue: "next sprint"}}
				return e
			},
			want: `Bob changed the deadline of "Fix login" to next sprint`,
		},
		{
			name: "deadline changed without recorded value",
			entry: func() *domain.HistoryEntry {
				return renderFixtureEntry(domain.ActionDeadlineChanged)
			},
			want: `Bob changed the deadline of "Fix login"`,
		},
		{
			name: "priority changed",
			entry: func() *domain.HistoryEntry {
				e := renderFixtureEntry(domain.ActionPriorityChanged)
				e.Changes = []domain.Change{{Field: "priority", OldValue: "medium", NewValue: "urgent"}}
				return e
			},
			want: `Bob changed the priority of "Fix login" to URGENT`,
		},
		{
			name: "priority changed without recorded value",
			entry: func() *domain.HistoryEntry {
				return renderFixtureEntry(domain.ActionPriorityChanged)
			},
			want: `Bob changed the priority of "Fix login"`,
		},
		{
			name:  "attachment added",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionAttachmentAdded) },
			want:  `Bob added an attachment to "Fix login"`,
		},
		{
			name:  "attachment removed",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry(domain.ActionAttachmentRemoved) },
			want:  `Bob removed an attachment from "Fix login"`,
		},
		{
			name:  "unmapped action falls back to generic message",
			entry: func() *domain.HistoryEntry { return renderFixtureEntry("archived") },
			want:  `Bob updated the task "Fix login"`,
		},
	}

	task := renderFixtureTask(domain.TaskPriorityMedium)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderContent(tt.entry(), task, "Bob")
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestRenderTitles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action domain.Action
		want   string
	}{
		{domain.ActionCreated, "New Task Assigned: Fix login"},
		{domain.ActionAssigned, "New Task Assigned: Fix login"},
		{domain.ActionStatusChanged, "Task Status Updated: Fix login"},
		{domain.ActionStageChanged, "Task Progress Updated: Fix login"},
		{domain.ActionTransferred, "Task Transferred: Fix login"},
		{domain.ActionCompleted, "Task Completed: Fix login"},
		{domain.ActionApproved, "Task Approved: Fix login"},
		{domain.ActionRejected, "Task Rejected: Fix login"},
		{domain.ActionDeadlineChanged, "Task Deadline Changed: Fix login"},
		{domain.ActionPriorityChanged, "Task Priority Changed: Fix login"},
		{domain.ActionAttachmentAdded, "Attachment Added: Fix login"},
		{domain.ActionAttachmentRemoved, "Attachment Removed: Fix login"},
		{"archived", "Task Updated: Fix login"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, renderTitle(tt.action, "Fix login"))
		})
	}
}

func TestTypeForAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action domain.Action
		want   domain.NotificationType
	}{
		{domain.ActionCreated, domain.NotificationTypeTaskAssigned},
		{domain.ActionAssigned, domain.NotificationTypeTaskAssigned},
		{domain.ActionStatusChanged, domain.NotificationTypeStatusChanged},
		{domain.ActionStageChanged, domain.NotificationTypeStageChanged},
		{domain.ActionTransferred, domain.NotificationTypeTaskTransferred},
		{domain.ActionCompleted, domain.NotificationTypeTaskCompleted},
		{domain.ActionApproved, domain.NotificationTypeTaskApproved},
		{domain.ActionRejected, domain.NotificationTypeTaskRejected},
		{domain.ActionDeadlineChanged, domain.NotificationTypeStatusChanged},
		{domain.ActionPriorityChanged, domain.NotificationTypeStatusChanged},
		{domain.ActionAttachmentAdded, domain.NotificationTypeStatusChanged},
		{domain.ActionAttachmentRemoved, domain.NotificationTypeStatusChanged},
		{domain.ActionRemarkAdded, domain.NotificationTypeStatusChanged},
		{"archived", domain.NotificationTypeStatusChanged},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForAction(tt.action))
		})
	}
}

func TestPriorityForAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action       domain.Action
		taskPriority domain.TaskPriority
		want         domain.NotificationPriority
	}{
		// Terminal workflow actions are high regardless of the task.
		{domain.ActionCompleted, domain.TaskPriorityLow, domain.NotificationPriorityHigh},
		{domain.ActionApproved, domain.TaskPriorityMedium, domain.NotificationPriorityHigh},
		{domain.ActionRejected, domain.TaskPriorityHigh, domain.NotificationPriorityHigh},
		{domain.ActionTransferred, domain.TaskPriorityLow, domain.NotificationPriorityHigh},
		// Action escalation wins even over an urgent task.
		{domain.ActionApproved, domain.TaskPriorityUrgent, domain.NotificationPriorityHigh},
		{domain.ActionCompleted, domain.TaskPriorityUrgent, domain.NotificationPriorityHigh},
		// Non-terminal actions inherit urgency from the task.
		{domain.ActionStatusChanged, domain.TaskPriorityUrgent, domain.NotificationPriorityUrgent},
		{domain.ActionAssigned, domain.TaskPriorityUrgent, domain.NotificationPriorityUrgent},
		{domain.ActionStatusChanged, domain.TaskPriorityHigh, domain.NotificationPriorityHigh},
		{domain.ActionStageChanged, domain.TaskPriorityMedium, domain.NotificationPriorityMedium},
		{domain.ActionDeadlineChanged, domain.TaskPriorityLow, domain.NotificationPriorityMedium},
		{domain.ActionCreated, "", domain.NotificationPriorityMedium},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s on %s task", tt.action, tt.taskPriority)
		if tt.taskPriority == "" {
			name = fmt.Sprintf("%s on task without priority", tt.action)
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityForAction(tt.action, tt.taskPriority))
		})
	}
}

func TestFormatDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2026-09-15T17:00:00Z", "September 15, 2026"},
		{"2026-03-01", "March 1, 2026"},
		{"2026-03-01 09:30:00", "March 1, 2026"},
		{"next sprint", "next sprint"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDeadline(tt.in), "input %q", tt.in)
	}
}
