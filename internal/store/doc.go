// Package store declares the persistence interfaces for rules, tasks and
// projects, along with the shared error sentinels and transaction helpers.
// Concrete implementations live in internal/platform/postgres; services and
// the automation engine depend only on these interfaces.
package store
