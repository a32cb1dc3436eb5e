// Package service contains the task workflows. See doc.go.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/service/recurring"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound indicates the project does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotificationNotFound indicates the notification does not exist or
	// belongs to another user.
	// API layer should map this to HTTP 404 Not Found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNotMember indicates the acting user is not a member of the
	// workspace that owns the resource.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotMember = errors.New("user is not a member of the workspace")

	// ErrAssigneeNotMember indicates the requested assignee is not a member
	// of the project's workspace.
	// API layer should map this to HTTP 400 Bad Request.
	ErrAssigneeNotMember = errors.New("assignee is not a member of the workspace")

	// ErrInvalidStatus indicates a status that does not belong to the project.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidStatus = errors.New("status does not belong to the project")

	// ErrInvalidSection indicates a section that does not belong to the
	// project.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidSection = errors.New("section does not belong to the project")

	// ErrEmptyUpdate indicates an update that names no fields.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyUpdate = errors.New("update contains no fields")

	// ErrInvalidSortOrder indicates a negative sort order.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidSortOrder = errors.New("sort order cannot be negative")
)

// Configuration errors. These mean the project is set up incorrectly and are
// never retried.
var (
	ErrMissingDefaultStatus    = errors.New("project has no statuses")
	ErrMissingDoneStatus       = errors.New("project has no done status")
	ErrMissingOpenStatus       = recurring.ErrMissingOpenStatus
	ErrRecurrenceAnchorMissing = recurring.ErrAnchorMissing
)

// IsConfigurationError reports whether err is one of the configuration errors.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingDefaultStatus) ||
		errors.Is(err, ErrMissingDoneStatus) ||
		errors.Is(err, ErrMissingOpenStatus) ||
		errors.Is(err, ErrRecurrenceAnchorMissing)
}

// ServiceError wraps errors from the service layer with the operation that
// failed. It allows consumers to use errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "complete_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
