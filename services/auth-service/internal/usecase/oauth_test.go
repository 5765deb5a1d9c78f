package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
	"github.com/citadell/task-manager-api/services/auth-service/internal/testutil"
	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	"github.com/citadell/task-manager-api/shared/provider"
)

func TestResolveIdentity_CreatesConfirmedUser(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	oauthUsecase := usecase.NewOAuthUsecase(users)

	user, err := oauthUsecase.ResolveIdentity(context.Background(), &provider.Profile{
		Email:     "alice@example.com",
		Name:      "Alice",
		AvatarURL: "https://example.com/alice.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "https://example.com/alice.png", user.AvatarURL)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.EmailConfirmed)
	assert.Nil(t, user.PasswordHash)
}

func TestResolveIdentity_ConfirmsExistingUser(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	oauthUsecase := usecase.NewOAuthUsecase(users)
	ctx := context.Background()

	passwordHash := "some-hash"
	existing, err := users.CreateUser(ctx, &model.User{
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: &passwordHash,
	})
	require.NoError(t, err)
	require.False(t, existing.EmailConfirmed)

	user, err := oauthUsecase.ResolveIdentity(ctx, &provider.Profile{
		Email: "alice@example.com",
		Name:  "Alice From Provider",
	})
	require.NoError(t, err)

	// The provider proved ownership of the email; no duplicate account.
	assert.Equal(t, existing.ID, user.ID)
	assert.True(t, user.EmailConfirmed)
	assert.Equal(t, 1, users.Count())

	stored, err := users.GetUser(ctx, existing.ID.Hex())
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)
	assert.NotNil(t, stored.PasswordHash)
}

func TestResolveIdentity_NormalizesEmail(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	oauthUsecase := usecase.NewOAuthUsecase(users)
	ctx := context.Background()

	first, err := oauthUsecase.ResolveIdentity(ctx, &provider.Profile{
		Email: "Alice@Example.com",
		Name:  "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", first.Email)

	second, err := oauthUsecase.ResolveIdentity(ctx, &provider.Profile{
		Email: "ALICE@EXAMPLE.COM",
		Name:  "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, users.Count())
}

func TestResolveIdentity_MissingEmail(t *testing.T) {
	oauthUsecase := usecase.NewOAuthUsecase(testutil.NewFakeUserRepository())

	_, err := oauthUsecase.ResolveIdentity(context.Background(), &provider.Profile{Name: "Alice"})
	assert.ErrorIs(t, err, usecase.ErrMissingProfileEmail)
}
