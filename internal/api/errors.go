package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api/shared"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service/auth"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors (covers task, user, history, and notification lookups)
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors (ErrDuplicate covers email and reminder collisions)
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrTaskFinished),
		errors.Is(err, service.ErrNotAssignee):
		return http.StatusConflict

	// A no-op mutation is answered with the current resource state
	case errors.Is(err, service.ErrNoChange):
		return http.StatusOK

	// Bad request errors: domain validation failures
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidTaskStatus),
		errors.Is(err, domain.ErrInvalidTaskStage),
		errors.Is(err, domain.ErrInvalidTaskPriority),
		errors.Is(err, domain.ErrInvalidNotificationType),
		errors.Is(err, domain.ErrInvalidNotificationPriority),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrUserNameEmpty),
		errors.Is(err, domain.ErrTaskTitleEmpty),
		errors.Is(err, domain.ErrChangeConflict),
		errors.Is(err, domain.ErrTransferDetailsUnexpected),
		errors.Is(err, domain.ErrStatusChangeUnexpected),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		validationErr *domain.ValidationError
		storeErr      *store.StoreError
	)

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return "You are not allowed to perform this action"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrHistoryNotFound):
		return "History entry not found"

	case errors.Is(err, store.ErrNotificationNotFound):
		return "Notification not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, service.ErrTaskFinished):
		return "Task workflow is already finished"

	case errors.Is(err, service.ErrNotAssignee):
		return "User is not assigned to this task"

	case errors.Is(err, service.ErrNoChange):
		return "No changes were made"

	// Bad request errors
	case errors.As(err, &validationErr):
		if validationErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return validationErr.Message

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrInvalidAction):
		return "Invalid action"

	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid role"

	case errors.Is(err, domain.ErrInvalidTaskStatus):
		return "Invalid task status"

	case errors.Is(err, domain.ErrInvalidTaskStage):
		return "Invalid task stage"

	case errors.Is(err, domain.ErrInvalidTaskPriority):
		return "Invalid task priority"

	case errors.Is(err, domain.ErrInvalidNotificationType):
		return "Invalid notification type"

	case errors.Is(err, domain.ErrInvalidNotificationPriority):
		return "Invalid notification priority"

	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"

	case errors.Is(err, domain.ErrUserNameEmpty):
		return "Name cannot be empty"

	case errors.Is(err, domain.ErrTaskTitleEmpty):
		return "Task title cannot be empty"

	case errors.Is(err, domain.ErrChangeConflict):
		return "Invalid change entry"

	case errors.Is(err, domain.ErrTransferDetailsUnexpected):
		return "Transfer details are not allowed for this action"

	case errors.Is(err, domain.ErrStatusChangeUnexpected):
		return "Status change details are not allowed for this action"

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Store errors carry an operation-level message written by our own
	// store code, which is safe to surface
	case errors.As(err, &storeErr):
		return fmt.Sprintf("Operation failed: %s", storeErr.Message)

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to its status code and safe message, then
// writes the response while logging the full (redacted) error. An explicit
// userMessage overrides the derived safe message when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	statusCode := MapErrorToStatusCode(err)

	message := userMessage
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, message, err)
}

// HandleValidationError writes a 400 response with a sanitized validation
// message while logging the full error.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	// Domain validation errors already carry a user-safe field and message
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return validationErr.Message
	}

	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			// Further split to get just the field validation part
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				// Create a cleaner error message
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
