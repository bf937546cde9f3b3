package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotProjectOwner indicates the acting user does not own the project
	// a mutating rule operation targets. Maps to HTTP 403 Forbidden.
	ErrNotProjectOwner = errors.New("user is not the project owner")

	// ErrNotProjectMember indicates the acting user is not a member of the
	// project a read operation targets. Maps to HTTP 403 Forbidden.
	ErrNotProjectMember = errors.New("user is not a project member")
)
