// Package logger provides structured logging for the service.
//
// It builds on log/slog: Setup configures the process-wide JSON logger and
// WithLogger/FromContext carry a request-scoped logger (usually tagged with a
// trace_id) through a context.Context.
package logger
