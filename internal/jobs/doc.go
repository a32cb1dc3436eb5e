// Package jobs runs background work and records each run in the job_runs
// table. A Runner persists a run as pending, hands it to a bounded queue and
// lets a worker pool execute it, recording completion or failure with the
// job's JSON result. RunNow executes synchronously with the same lifecycle,
// which is how the HTTP and CLI triggers obtain a summary.
//
// Ticker submits a DueNotificationJob at a fixed interval.
package jobs
