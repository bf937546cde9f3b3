// Package testutils provides shared helpers for tests: domain object
// builders, database row insertion helpers for integration tests, and JWT
// creation for API tests.
package testutils
