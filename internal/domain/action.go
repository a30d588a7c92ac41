package domain

// Action identifies the kind of task mutation recorded in a history entry.
// The set is closed: it is the single dispatch key for recipient resolution,
// content rendering, and notification categorization, so unknown values are
// rejected at append time rather than silently accepted.
type Action string

// Possible action values.
const (
	ActionCreated           Action = "created"
	ActionAssigned          Action = "assigned"
	ActionStatusChanged     Action = "status_changed"
	ActionStageChanged      Action = "stage_changed"
	ActionTransferred       Action = "transferred"
	ActionRemarkAdded       Action = "remark_added"
	ActionAttachmentAdded   Action = "attachment_added"
	ActionAttachmentRemoved Action = "attachment_removed"
	ActionDeadlineChanged   Action = "deadline_changed"
	ActionPriorityChanged   Action = "priority_changed"
	ActionCompleted         Action = "completed"
	ActionApproved          Action = "approved"
	ActionRejected          Action = "rejected"
)

// Actions lists every member of the closed action taxonomy. The order is
// stable and matches the declaration order above.
func Actions() []Action {
	return []Action{
		ActionCreated,
		ActionAssigned,
		ActionStatusChanged,
		ActionStageChanged,
		ActionTransferred,
		ActionRemarkAdded,
		ActionAttachmentAdded,
		ActionAttachmentRemoved,
		ActionDeadlineChanged,
		ActionPriorityChanged,
		ActionCompleted,
		ActionApproved,
		ActionRejected,
	}
}

// IsValid reports whether the action is a member of the closed taxonomy.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionAssigned, ActionStatusChanged, ActionStageChanged,
		ActionTransferred, ActionRemarkAdded, ActionAttachmentAdded,
		ActionAttachmentRemoved, ActionDeadlineChanged, ActionPriorityChanged,
		ActionCompleted, ActionApproved, ActionRejected:
		return true
	default:
		return false
	}
}
