// Package store defines the persistence ports of the task tracker. Each
// interface covers one entity family; Repository composes them together with
// transactional execution so that workflows such as task completion can read
// and write atomically.
//
// Implementations live under internal/platform. Lookups that find nothing
// return an error wrapping ErrNotFound.
package store
