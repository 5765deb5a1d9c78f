package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadell/task-manager-api/shared/auth"
)

const testSecret = "test-secret"

func newClaims(expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    "task-manager",
		Audience:  jwt.ClaimStrings{"task-manager"},
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestValidateTokenWithClaims(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	tokenStr, err := jwtAuth.GenerateToken(newClaims(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, testSecret, claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidateTokenWithClaims_WrongSecret(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	tokenStr, err := jwtAuth.GenerateToken(newClaims(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, "other-secret", &jwt.RegisteredClaims{})
	assert.Error(t, err)
}

func TestValidateTokenWithClaims_Expired(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	tokenStr, err := jwtAuth.GenerateToken(newClaims(time.Now().Add(-time.Minute)), testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, testSecret, &jwt.RegisteredClaims{})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenWithClaims_WrongAudience(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	claims := newClaims(time.Now().Add(time.Hour))
	claims.Audience = jwt.ClaimStrings{"someone-else"}

	tokenStr, err := jwtAuth.GenerateToken(claims, testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, testSecret, &jwt.RegisteredClaims{})
	assert.Error(t, err)
}

func TestDecodeTokenWithClaims_ExpiredTokenStillDecodes(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	tokenStr, err := jwtAuth.GenerateToken(newClaims(time.Now().Add(-time.Hour)), testSecret)
	require.NoError(t, err)

	// The payload stays readable after expiry so the stored row can be looked
	// up and regenerated.
	claims := &jwt.RegisteredClaims{}
	_, err = jwtAuth.DecodeTokenWithClaims(tokenStr, testSecret, claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestDecodeTokenWithClaims_RejectsBadSignature(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	tokenStr, err := jwtAuth.GenerateToken(newClaims(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.DecodeTokenWithClaims(tokenStr, "other-secret", &jwt.RegisteredClaims{})
	assert.Error(t, err)

	_, err = jwtAuth.DecodeTokenWithClaims(tokenStr+"tampered", testSecret, &jwt.RegisteredClaims{})
	assert.Error(t, err)
}

func TestDecodeTokenWithClaims_RejectsUnsignedToken(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("task-manager", "task-manager")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, newClaims(time.Now().Add(time.Hour)))
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtAuth.DecodeTokenWithClaims(tokenStr, testSecret, &jwt.RegisteredClaims{})
	assert.Error(t, err)
}
