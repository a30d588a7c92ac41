package notify

import (
	"context"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/google/uuid"
)

// ResolveRecipients computes the set of users to notify for the given
// history entry against the given task snapshot. The actor is always
// excluded and the result carries no duplicates; order is unspecified.
//
// remark_added deliberately resolves to no recipients (remarks are surfaced
// through a separate channel). An action missing from the rule table also
// resolves to no recipients rather than failing; that keeps a forgotten
// mapping from breaking event recording, at the cost of silently dropped
// notifications, so the miss is logged at warn level.
//
// The function never writes; callers persist the fan-out.
func ResolveRecipients(ctx context.Context, entry *domain.HistoryEntry, task *domain.Task) []uuid.UUID {
	var candidates []uuid.UUID

	switch entry.Action {
	case domain.ActionCreated, domain.ActionAssigned:
		candidates = append(candidates, task.AssignedTo...)

	case domain.ActionStatusChanged:
		candidates = append(candidates, task.CreatedBy)
		candidates = append(candidates, task.AssignedTo...)

	case domain.ActionStageChanged:
		candidates = append(candidates, task.CreatedBy)

	case domain.ActionTransferred:
		if d := entry.TransferDetails; d != nil {
			if d.ToUser != nil {
				candidates = append(candidates, *d.ToUser)
			}
			if d.FromUser != nil {
				candidates = append(candidates, *d.FromUser)
			}
		}

	case domain.ActionCompleted, domain.ActionApproved, domain.ActionRejected:
		candidates = append(candidates, task.CreatedBy)
		candidates = append(candidates, task.AssignedTo...)

	case domain.ActionDeadlineChanged, domain.ActionPriorityChanged:
		candidates = append(candidates, task.AssignedTo...)

	case domain.ActionAttachmentAdded, domain.ActionAttachmentRemoved:
		candidates = append(candidates, task.CreatedBy)
		candidates = append(candidates, task.AssignedTo...)

	case domain.ActionRemarkAdded:
		// Remarks never notify.
		return nil

	default:
		logger.FromContext(ctx).Warn("no recipient rule for action, notifying nobody",
			"action", entry.Action,
			"task_id", entry.TaskID,
			"history_id", entry.ID)
		return nil
	}

	return dedupeExcluding(candidates, entry.PerformedBy)
}

// dedupeExcluding removes duplicates and every occurrence of excluded from
// the given IDs, preserving first-seen order.
func dedupeExcluding(ids []uuid.UUID, excluded uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if id == excluded || id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
