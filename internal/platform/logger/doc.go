// Package logger configures the process-wide JSON slog logger from the
// server config and carries request-scoped loggers (tagged with trace and
// user IDs) through context.Context.
package logger
