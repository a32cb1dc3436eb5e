package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// domainValidationErrors are entity validation failures caused by client input.
var domainValidationErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidID,
	domain.ErrEmptyTaskTitle,
	domain.ErrTaskTitleTooLong,
	domain.ErrTaskDescriptionTooLong,
	domain.ErrInvalidPriority,
	domain.ErrEmptyCommentBody,
	domain.ErrCommentBodyTooLong,
	domain.ErrProjectNameTooShort,
	domain.ErrProjectNameTooLong,
	domain.ErrProjectDescriptionTooLong,
	domain.ErrEmptyProjectWorkspaceID,
}

func isValidationError(err error) bool {
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.Is(err, store.ErrInvalidEntity)
}

// MapErrorToStatusCode maps service and store errors to HTTP status codes.
// Configuration errors and anything unrecognized are 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotMember):
		return http.StatusForbidden

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case service.IsConfigurationError(err):
		return http.StatusInternalServerError

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrAssigneeNotMember),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidSection),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, service.ErrInvalidSortOrder),
		isValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Invalid token"

	case errors.Is(err, service.ErrNotMember):
		return "You are not a member of this workspace"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, service.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case service.IsConfigurationError(err):
		return "Project is not configured correctly"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, service.ErrAssigneeNotMember):
		return "Assignee is not a member of this workspace"
	case errors.Is(err, service.ErrInvalidStatus):
		return "Status does not belong to the project"
	case errors.Is(err, service.ErrInvalidSection):
		return "Section does not belong to the project"
	case errors.Is(err, service.ErrEmptyUpdate):
		return "No fields to update"
	case errors.Is(err, service.ErrInvalidSortOrder):
		return "Sort order cannot be negative"
	case errors.Is(err, domain.ErrProjectNameTooShort):
		return "Project name is too short"
	case errors.Is(err, domain.ErrProjectNameTooLong):
		return "Project name is too long"
	case errors.Is(err, domain.ErrProjectDescriptionTooLong):
		return "Project description is too long"
	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return "Task title is required"
	case errors.Is(err, domain.ErrTaskTitleTooLong):
		return "Task title is too long"
	case errors.Is(err, domain.ErrTaskDescriptionTooLong):
		return "Task description is too long"
	case errors.Is(err, domain.ErrInvalidPriority):
		return "Invalid priority"
	case errors.Is(err, domain.ErrEmptyCommentBody):
		return "Comment body is required"
	case errors.Is(err, domain.ErrCommentBodyTooLong):
		return "Comment body is too long"
	case isValidationError(err):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty fallback
// replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" && !service.IsConfigurationError(err) {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// fieldError is a request field rejected outside struct tag validation.
type fieldError struct {
	Field  string
	Reason string
}

func (e fieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// checkField validates a single value against a validator tag.
func checkField(field string, value any, tag string) error {
	err := shared.Validate.Var(value, tag)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldError{Field: field, Reason: validationTagMessage(verrs[0].Tag())}
	}
	return err
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
	}
	var fe fieldError
	if errors.As(err, &fe) {
		return fmt.Sprintf("Invalid %s: %s", fe.Field, fe.Reason)
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a UUID"
	case "timezone":
		return "unknown time zone"
	default:
		return "validation failed"
	}
}
