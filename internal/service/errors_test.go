package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskflow-api/internal/service/recurring"
	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	t.Run("sentinel errors are different", func(t *testing.T) {
		assert.False(t, errors.Is(ErrTaskNotFound, ErrProjectNotFound))
		assert.False(t, errors.Is(ErrNotMember, ErrAssigneeNotMember))
	})

	t.Run("recurrence configuration errors are shared", func(t *testing.T) {
		assert.ErrorIs(t, ErrMissingOpenStatus, recurring.ErrMissingOpenStatus)
		assert.ErrorIs(t, ErrRecurrenceAnchorMissing, recurring.ErrAnchorMissing)
	})

	t.Run("configuration errors", func(t *testing.T) {
		assert.True(t, IsConfigurationError(fmt.Errorf("x: %w", ErrMissingDoneStatus)))
		assert.True(t, IsConfigurationError(NewServiceError("complete_task", "chain failed", ErrMissingOpenStatus)))
		assert.True(t, IsConfigurationError(ErrMissingDefaultStatus))
		assert.True(t, IsConfigurationError(ErrRecurrenceAnchorMissing))
		assert.False(t, IsConfigurationError(ErrTaskNotFound))
		assert.False(t, IsConfigurationError(nil))
	})
}

func TestServiceError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		op       string
		message  string
		err      error
		expected string
	}{
		{
			name:     "with underlying error",
			op:       "create_task",
			message:  "failed to insert task",
			err:      errors.New("database connection failed"),
			expected: "create_task operation failed: failed to insert task: database connection failed",
		},
		{
			name:     "without underlying error",
			op:       "mark_read",
			message:  "nothing to do",
			expected: "mark_read operation failed: nothing to do",
		},
		{
			name:     "with sentinel error",
			op:       "complete_task",
			message:  "task lookup failed",
			err:      ErrTaskNotFound,
			expected: "complete_task operation failed: task lookup failed: task not found",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NewServiceError(tt.op, tt.message, tt.err).Error())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	t.Parallel()

	err := NewServiceError("add_comment", "task lookup failed", ErrTaskNotFound)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	var se *ServiceError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &se))
	assert.Equal(t, "add_comment", se.Operation)
	assert.Nil(t, NewServiceError("op", "msg", nil).Unwrap())
}
