// Package notify contains the activity-to-notification derivation rules:
// who must be told about a recorded task event, what the notification says,
// and how one history entry fans out into per-recipient notification rows.
//
// ResolveRecipients and RenderContent are pure functions over a history
// entry and a task snapshot; they never write. FanoutHandler is the event
// handler that drives them and persists the result, one transaction per
// event.
package notify
