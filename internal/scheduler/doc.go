// Package scheduler derives time-based reminder notifications from the
// current task state, independently of the event log.
//
// Two sweeps exist: one for tasks whose deadline falls within the next
// window (default 24 hours) and one for tasks already past their deadline.
// Both skip finished work (stage done, status approved or rejected), write
// notifications without a sender, and rely on the notification store's
// once-per-day dedup key for idempotence, so re-running a sweep within the
// same calendar day creates nothing new.
//
// Runner wraps a ReminderService in a ticker loop for deployments that
// trigger sweeps in-process rather than from an external cron.
package scheduler
