// Package api provides the HTTP handlers for the automation rule CRUD
// surface and the task mutation endpoints, plus the error-to-status-code
// mapping that keeps internal error details out of responses.
package api
