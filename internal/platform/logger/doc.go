// Package logger configures the process-wide slog JSON logger and provides
// context propagation for request-scoped loggers, so trace IDs attached by
// middleware follow a request down into services and stores.
package logger
