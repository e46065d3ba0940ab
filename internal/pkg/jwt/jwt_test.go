package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	return NewJWTService("test-secret", time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "emp-1", identity.RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, string(identity.RoleManager), claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestSSETokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	tokenString, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 60, expiresIn)

	userID, err := svc.ValidateSSEToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateSSETokenRejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	tokenString, _, err := svc.GenerateAccessToken("user-1", "emp-1", identity.RoleEmployee)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(tokenString)
	assert.Error(t, err)
}

func TestValidateSSETokenRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	other := NewJWTService("other-secret", time.Hour)
	tokenString, _, err := other.GenerateSSEToken("user-1")
	require.NoError(t, err)

	_, err = newTestService().ValidateSSEToken(tokenString)
	assert.Error(t, err)
}

func TestValidateSSETokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := newTestService().ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}
