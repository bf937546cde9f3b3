//go:build integration

// Package testdb provides database connection and transaction utilities for
// integration tests. Tests get a migrated database through GetTestDB and run
// inside a rolled-back transaction through WithTx, which keeps parallel
// tests isolated without per-test schema setup.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

var (
	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error
)

// GetTestDatabaseURL returns the database URL for integration tests,
// checking the test-specific variable before falling back to DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("TASKBOARD_TEST_DB_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// ShouldSkipDatabaseTest reports whether database integration tests should
// be skipped because no database URL is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDB returns a shared, migrated database connection for the test
// binary. The test is skipped when no database is configured and failed
// when the database is configured but unreachable.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("skipping database test: DATABASE_URL not set")
	}

	dbOnce.Do(func() {
		dbConn, dbErr = sql.Open("pgx", GetTestDatabaseURL())
		if dbErr != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if dbErr = dbConn.PingContext(ctx); dbErr != nil {
			return
		}

		dbErr = postgres.MigrateUp(dbConn)
	})
	if dbErr != nil {
		t.Fatalf("test database setup failed: %v", dbErr)
	}

	return dbConn
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never leave rows behind and may run in parallel against the shared
// database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
