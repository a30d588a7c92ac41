package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions callers are expected to check for with
// errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskFinished indicates a mutation was attempted on a task whose
	// workflow is already closed (approved or rejected).
	// API layer should map this to HTTP 409 Conflict.
	ErrTaskFinished = errors.New("task workflow is already finished")

	// ErrNotAssignee indicates a transfer was requested from a user who is
	// not currently assigned to the task.
	// API layer should map this to HTTP 409 Conflict.
	ErrNotAssignee = errors.New("user is not assigned to this task")

	// ErrNoChange indicates an update would not change anything, so no
	// history entry was recorded.
	// API layer should map this to HTTP 200 with the unchanged resource.
	ErrNoChange = errors.New("update does not change the task")
)
