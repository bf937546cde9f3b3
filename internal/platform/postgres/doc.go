// Package postgres implements the internal/store interfaces on PostgreSQL
// through the pgx stdlib driver, and carries the embedded goose migrations
// that define the schema. Rule listings rely on the bigserial position
// column for creation-order guarantees; overdue-task claiming uses
// FOR UPDATE SKIP LOCKED for exactly-once handoff.
package postgres
