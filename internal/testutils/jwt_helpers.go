package testutils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// TestJWTSecret is a signing secret for tests; it satisfies the 32
// character minimum that the auth service enforces.
const TestJWTSecret = "test-jwt-secret-thats-long-enough-to-use"

// NewTestJWTService returns a JWTService signing with TestJWTSecret.
func NewTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: TestJWTSecret})
	require.NoError(t, err)
	return svc
}

// CreateTestJWT returns a signed bearer token for the given user.
func CreateTestJWT(t *testing.T, svc auth.JWTService, userID uuid.UUID) string {
	t.Helper()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	return token
}
