package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCommentLength is the maximum number of characters in a comment body.
const MaxCommentLength = 2000

// Comment validation errors.
var (
	ErrEmptyCommentBody   = errors.New("comment body cannot be empty")
	ErrCommentBodyTooLong = errors.New("comment body is too long")
)

// Comment is a free-form message on a task.
type Comment struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	TaskID    uuid.UUID `json:"task_id"    db:"task_id"`
	UserID    uuid.UUID `json:"user_id"    db:"user_id"`
	Body      string    `json:"body"       db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewComment creates a validated comment with a fresh ID. The body is trimmed.
func NewComment(taskID, userID uuid.UUID, body string, now time.Time) (*Comment, error) {
	c := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		Body:      strings.TrimSpace(body),
		CreatedAt: now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the comment body limits.
func (c *Comment) Validate() error {
	if c.TaskID == uuid.Nil || c.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if c.Body == "" {
		return ErrEmptyCommentBody
	}
	if utf8.RuneCountInString(c.Body) > MaxCommentLength {
		return ErrCommentBodyTooLong
	}
	return nil
}
