package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	authtypes "github.com/citadell/task-manager-api/services/auth-service/pkg/types"
	"github.com/citadell/task-manager-api/shared/security"
)

func TestRegister(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()

	message, err := env.authUsecase.Register(ctx, usecase.RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully. Please check your email for verification", message)

	user, err := env.users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.EmailConfirmed)

	// The password is stored hashed, never verbatim.
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "secret-pass", *user.PasswordHash)
	ok, err := security.VerifyPassword("secret-pass", *user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Registration kicks off email verification but does not log in.
	email, err := env.sender.LastEmail()
	require.NoError(t, err)
	assert.Equal(t, "verification", email.Kind)
	assert.Equal(t, "alice@example.com", email.To)
	assert.Nil(t, user.RefreshTokenHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	env.createUser(t, "alice@example.com", "Alice", "secret-pass", false)

	_, err := env.authUsecase.Register(ctx, usecase.RegisterParams{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, usecase.ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	created := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	user, tokens, err := env.authUsecase.Login(ctx, usecase.LoginParams{
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	// Both tokens validate against their own secret and carry the user id.
	claims := &authtypes.TokenClaims{}
	_, err = env.jwtAuth.ValidateTokenWithClaims(tokens.AccessToken, env.cfg.Token.AccessTokenSecret, claims)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), claims.UserID)

	claims = &authtypes.TokenClaims{}
	_, err = env.jwtAuth.ValidateTokenWithClaims(tokens.RefreshToken, env.cfg.Token.RefreshTokenSecret, claims)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), claims.UserID)

	// The stored hash matches the issued refresh token.
	stored, err := env.users.GetUser(ctx, created.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshTokenHash)
	ok, err := security.VerifyPassword(tokens.RefreshToken, *stored.RefreshTokenHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin_IdenticalErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	_, _, unknownErr := env.authUsecase.Login(ctx, usecase.LoginParams{
		Email:    "nobody@example.com",
		Password: "secret-pass",
	})
	_, _, wrongErr := env.authUsecase.Login(ctx, usecase.LoginParams{
		Email:    "alice@example.com",
		Password: "wrong-pass",
	})

	require.ErrorIs(t, unknownErr, usecase.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, usecase.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_OAuthOnlyAccountHasNoPassword(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	env.createUser(t, "alice@example.com", "Alice", "", true)

	_, _, err := env.authUsecase.Login(ctx, usecase.LoginParams{
		Email:    "alice@example.com",
		Password: "anything",
	})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestLogin_UnconfirmedEmail(t *testing.T) {
	t.Run("rejected when confirmation is required", func(t *testing.T) {
		env := newUsecaseEnv()
		env.cfg.RequireVerifiedEmailForLogin = true
		env.createUser(t, "alice@example.com", "Alice", "secret-pass", false)

		_, _, err := env.authUsecase.Login(context.Background(), usecase.LoginParams{
			Email:    "alice@example.com",
			Password: "secret-pass",
		})
		assert.ErrorIs(t, err, usecase.ErrEmailNotConfirmed)
	})

	t.Run("allowed when confirmation is not required", func(t *testing.T) {
		env := newUsecaseEnv()
		env.cfg.RequireVerifiedEmailForLogin = false
		env.createUser(t, "alice@example.com", "Alice", "secret-pass", false)

		_, tokens, err := env.authUsecase.Login(context.Background(), usecase.LoginParams{
			Email:    "alice@example.com",
			Password: "secret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
	})
}

func TestIssueTokens_RotationInvalidatesPreviousRefreshToken(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	first, err := env.authUsecase.IssueTokens(ctx, user.ID.Hex())
	require.NoError(t, err)

	second, err := env.authUsecase.IssueTokens(ctx, user.ID.Hex())
	require.NoError(t, err)

	// The stored hash now matches only the latest refresh token.
	_, _, err = env.authUsecase.RefreshAccessToken(ctx, user.ID.Hex(), first.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)

	_, accessToken, err := env.authUsecase.RefreshAccessToken(ctx, user.ID.Hex(), second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestRefreshAccessToken(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	tokens, err := env.authUsecase.IssueTokens(ctx, user.ID.Hex())
	require.NoError(t, err)

	refreshed, accessToken, err := env.authUsecase.RefreshAccessToken(ctx, user.ID.Hex(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)

	claims := &authtypes.TokenClaims{}
	_, err = env.jwtAuth.ValidateTokenWithClaims(accessToken, env.cfg.Token.AccessTokenSecret, claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestLogout(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	tokens, err := env.authUsecase.IssueTokens(ctx, user.ID.Hex())
	require.NoError(t, err)

	require.NoError(t, env.authUsecase.Logout(ctx, user.ID.Hex()))

	// The outstanding refresh token is dead after logout.
	_, _, err = env.authUsecase.RefreshAccessToken(ctx, user.ID.Hex(), tokens.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)
}

func TestValidateAuthToken(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	token, err := env.tokenUsecase.GenerateAuthToken(ctx, user.ID.Hex())
	require.NoError(t, err)

	resolved, err := env.authUsecase.ValidateAuthToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestValidateAuthToken_DeletedUser(t *testing.T) {
	env := newUsecaseEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	token, err := env.tokenUsecase.GenerateAuthToken(ctx, user.ID.Hex())
	require.NoError(t, err)

	env.users.DeleteUser(user.ID.Hex())

	_, err = env.authUsecase.ValidateAuthToken(ctx, token)
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)
}
