package store

import "context"

// Repository is the full persistence port. Stores returned to a WithinTx
// callback share one transaction.
type Repository interface {
	TaskStore
	ProjectStore
	ProjectWriter
	NotificationStore
	RecurrenceStore
	ActivityStore
	CommentStore
	MembershipStore

	// WithinTx runs fn against a transactional Repository. The transaction
	// commits when fn returns nil and rolls back otherwise. Calling WithinTx
	// on a repository that is already transactional runs fn in the same
	// transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
