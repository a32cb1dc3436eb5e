// Package service contains the task workflows exposed to the API and CLI.
//
// ProjectService creates projects seeded with the default statuses, one of
// them done, and sections.
//
// TaskService creates, updates, moves and completes tasks and records
// comments. Each operation runs in a single store transaction: the task
// change, its activity event, the notifications it causes and, for recurring
// tasks, the generated successor are committed together or not at all.
//
// InboxService lists and acknowledges a user's notifications.
//
// Errors are returned as *ServiceError wrapping one of the package sentinels
// or a store error, so callers use errors.Is and errors.As rather than string
// matching. The scheduled due notification scan lives in the notify
// subpackage and the successor generation in recurring.
package service
