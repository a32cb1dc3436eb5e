// Package domain contains the core business entities of the task tracker:
// workspaces and their members, projects with their ordered statuses and
// sections, tasks, recurrences, comments, activity events and inbox
// notifications. It is independent of any storage or delivery mechanism.
//
// Subpackage recurrence holds the pure date arithmetic used to chain
// repeating tasks.
package domain
