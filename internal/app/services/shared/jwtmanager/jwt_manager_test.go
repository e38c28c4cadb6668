package jwtmanager

import (
	"context"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, secret string) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager(&config.InternalConfig{JWT: config.AppJWT{Secret: secret}}, zap.NewNop())
	require.NoError(t, err)
	return manager
}

func TestJWTManager_RoundTrip(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, "top-secret")

	token, err := manager.CreateToken(ctx, models.Principal{ID: "doc-1", Role: constvars.RoleDoctor})
	require.NoError(t, err)

	principal, err := manager.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", principal.ID)
	assert.Equal(t, constvars.RoleDoctor, principal.Role)
}

func TestJWTManager_Rejects(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, "top-secret")

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newTestManager(t, "other-secret")
		token, err := other.CreateToken(ctx, models.Principal{ID: "p-1", Role: constvars.RolePatient})
		require.NoError(t, err)

		_, err = manager.VerifyToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		claims := PrincipalClaims{
			Role: constvars.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin-1",
				ExpiresAt: jwt.NewNumericDate(past),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("top-secret"))
		require.NoError(t, err)

		_, err = manager.VerifyToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := PrincipalClaims{Role: "nurse", RegisteredClaims: jwt.RegisteredClaims{Subject: "n-1"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("top-secret"))
		require.NoError(t, err)

		_, err = manager.VerifyToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := manager.VerifyToken(ctx, "")
		assert.Error(t, err)
	})
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&config.InternalConfig{}, zap.NewNop())
	assert.Error(t, err)
}
