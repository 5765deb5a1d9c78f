package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/handler"
	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
	"github.com/citadell/task-manager-api/services/auth-service/internal/payload"
	"github.com/citadell/task-manager-api/services/auth-service/internal/testutil"
	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	"github.com/citadell/task-manager-api/shared/auth"
	"github.com/citadell/task-manager-api/shared/provider"
	"github.com/citadell/task-manager-api/shared/security"
	"github.com/citadell/task-manager-api/shared/validator"
)

type handlerEnv struct {
	router        chi.Router
	users         *testutil.FakeUserRepository
	verifications *testutil.FakeVerificationTokenRepository
	sender        *testutil.FakeEmailSender
	cfg           *config.AuthServiceConfig
	tokenUsecase  usecase.TokenUsecase
	authUsecase   usecase.AuthUsecase
}

func newHandlerEnv() *handlerEnv {
	cfg := testutil.NewTestConfig()
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	logger := zerolog.Nop()

	users := testutil.NewFakeUserRepository()
	verifications := testutil.NewFakeVerificationTokenRepository()
	resets := testutil.NewFakePasswordResetTokenRepository()
	authTokens := testutil.NewFakeAuthTokenRepository()
	sender := testutil.NewFakeEmailSender()

	tokenUsecase := usecase.NewTokenUsecase(users, verifications, resets, authTokens, jwtAuth, sender, cfg)
	authUsecase := usecase.NewAuthUsecase(users, tokenUsecase, jwtAuth, cfg)
	oauthUsecase := usecase.NewOAuthUsecase(users)

	router := chi.NewRouter()
	handler.NewAuthHTTPHandler(
		router,
		authUsecase,
		tokenUsecase,
		oauthUsecase,
		provider.NewRegistry(),
		validator.New(),
		jwtAuth,
		cfg,
		&logger,
	)

	return &handlerEnv{
		router:        router,
		users:         users,
		verifications: verifications,
		sender:        sender,
		cfg:           cfg,
		tokenUsecase:  tokenUsecase,
		authUsecase:   authUsecase,
	}
}

func (e *handlerEnv) createUser(t *testing.T, email, name, password string, confirmed bool) *model.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	user, err := e.users.CreateUser(context.Background(), &model.User{
		Email:          email,
		Name:           name,
		PasswordHash:   &hash,
		EmailConfirmed: confirmed,
	})
	require.NoError(t, err)

	return user
}

func (e *handlerEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

// linkQueryParam extracts a query parameter from an emailed link.
func linkQueryParam(t *testing.T, link, param string) string {
	t.Helper()

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	value := parsed.Query().Get(param)
	require.NotEmpty(t, value)

	return value
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	env := newHandlerEnv()

	rec := env.postJSON(t, "/auth/register", payload.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp payload.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully. Please check your email for verification", resp.Message)

	// The handler lowercases the email before it reaches storage.
	user, err := env.users.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, user.EmailConfirmed)
}

func TestRegisterEndpoint_ValidationFailure(t *testing.T) {
	env := newHandlerEnv()

	rec := env.postJSON(t, "/auth/register", payload.RegisterRequest{
		Name:     "Alice",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string                `json:"message"`
		Errors  []validator.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Message)
	assert.NotEmpty(t, resp.Errors)

	assert.Equal(t, 0, env.users.Count())
}

func TestVerifyEndpoint(t *testing.T) {
	env := newHandlerEnv()
	ctx := context.Background()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", false)

	require.NoError(t, env.tokenUsecase.InitiateEmailVerification(ctx, user.Email, user.Name))
	row, err := env.verifications.GetTokenByEmail(ctx, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodGet,
		fmt.Sprintf("/auth/verify?token=%s&code=%s", row.Token, row.Code),
		nil,
	)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.users.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.True(t, updated.EmailConfirmed)
}

func TestVerifyEndpoint_MissingParams(t *testing.T) {
	env := newHandlerEnv()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/verify?token=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_SetsSessionCookies(t *testing.T) {
	env := newHandlerEnv()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	rec := env.postJSON(t, "/auth/login", payload.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp payload.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID.Hex(), resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)

	cookies := rec.Result().Cookies()

	access := cookieByName(cookies, "Authentication")
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int(env.cfg.Token.AccessTokenExpiresIn.Seconds()), access.MaxAge)

	refresh := cookieByName(cookies, "Refresh")
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, "/", refresh.Path)
	assert.Equal(t, int(env.cfg.Token.RefreshTokenExpiresIn.Seconds()), refresh.MaxAge)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	env := newHandlerEnv()
	env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	rec := env.postJSON(t, "/auth/login", payload.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRefreshEndpoint(t *testing.T) {
	env := newHandlerEnv()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	tokens, err := env.authUsecase.IssueTokens(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "Refresh", Value: tokens.RefreshToken})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec.Result().Cookies(), "Authentication")
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
}

func TestRefreshEndpoint_NoCookie(t *testing.T) {
	env := newHandlerEnv()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint_ClearsCookies(t *testing.T) {
	env := newHandlerEnv()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	tokens, err := env.authUsecase.IssueTokens(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/auth/log-out", nil)
	req.AddCookie(&http.Cookie{Name: "Authentication", Value: tokens.AccessToken})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	for _, name := range []string{"Authentication", "Refresh"} {
		cookie := cookieByName(rec.Result().Cookies(), name)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	}

	// The stored refresh token hash is gone.
	stored, err := env.users.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshTokenHash)
}

func TestExchangeAuthTokenEndpoint(t *testing.T) {
	env := newHandlerEnv()
	user := env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	handoff, err := env.tokenUsecase.GenerateAuthToken(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	rec := env.postJSON(t, "/auth/token", payload.AuthTokenRequest{Token: handoff})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotNil(t, cookieByName(rec.Result().Cookies(), "Authentication"))
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), "Refresh"))

	// The handoff token is single use.
	rec = env.postJSON(t, "/auth/token", payload.AuthTokenRequest{Token: handoff})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPasswordEndpoint(t *testing.T) {
	env := newHandlerEnv()
	env.createUser(t, "alice@example.com", "Alice", "secret-pass", true)

	rec := env.postJSON(t, "/auth/forgot-password", payload.ForgotPasswordRequest{
		Email: "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	email, err := env.sender.LastEmail()
	require.NoError(t, err)
	assert.Equal(t, "password_reset", email.Kind)
}

func TestForgotPasswordEndpoint_UnknownEmail(t *testing.T) {
	env := newHandlerEnv()

	rec := env.postJSON(t, "/auth/forgot-password", payload.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPasswordEndpoint(t *testing.T) {
	env := newHandlerEnv()
	user := env.createUser(t, "alice@example.com", "Alice", "old-password", true)

	require.NoError(t, env.tokenUsecase.InitiatePasswordReset(context.Background(), user.Email))

	email, err := env.sender.LastEmail()
	require.NoError(t, err)
	resetJWT := linkQueryParam(t, email.Link, "token")

	rec := env.postJSON(t, "/auth/reset-password", payload.ResetPasswordRequest{
		Token:    resetJWT,
		Password: "new-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.users.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	ok, err := security.VerifyPassword("new-password", *stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOAuthRedirectEndpoint_UnknownProvider(t *testing.T) {
	env := newHandlerEnv()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	// The registry in this test has no providers configured.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
