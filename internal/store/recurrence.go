package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// RecurrenceStore defines read access to recurrence rules.
type RecurrenceStore interface {
	// GetRecurrence returns ErrRecurrenceNotFound if the rule does not exist.
	GetRecurrence(ctx context.Context, id uuid.UUID) (*domain.Recurrence, error)
}
