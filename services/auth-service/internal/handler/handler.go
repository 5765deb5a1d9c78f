package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/payload"
	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	authtypes "github.com/citadell/task-manager-api/services/auth-service/pkg/types"
	"github.com/citadell/task-manager-api/shared/auth"
	"github.com/citadell/task-manager-api/shared/middleware"
	"github.com/citadell/task-manager-api/shared/provider"
	"github.com/citadell/task-manager-api/shared/validator"
)

const (
	accessCookieName  = "Authentication"
	refreshCookieName = "Refresh"
)

type authHTTPHandler struct {
	authUsecase    usecase.AuthUsecase
	tokenUsecase   usecase.TokenUsecase
	oauthUsecase   usecase.OAuthUsecase
	providers      *provider.Registry
	validate       *validator.Validator
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
	logger         *zerolog.Logger
}

// NewAuthHTTPHandler creates the HTTP handler for the auth service and
// mounts its routes on the given router.
func NewAuthHTTPHandler(
	router chi.Router,
	authUsecase usecase.AuthUsecase,
	tokenUsecase usecase.TokenUsecase,
	oauthUsecase usecase.OAuthUsecase,
	providers *provider.Registry,
	validate *validator.Validator,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
	logger *zerolog.Logger,
) {
	h := &authHTTPHandler{
		authUsecase:    authUsecase,
		tokenUsecase:   tokenUsecase,
		oauthUsecase:   oauthUsecase,
		providers:      providers,
		validate:       validate,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
		logger:         logger,
	}

	accessGuard := middleware.NewJWTCookieMiddleware(
		jwtAuth,
		authServiceCfg.Token.AccessTokenSecret,
		accessCookieName,
	)
	refreshGuard := middleware.NewJWTCookieMiddleware(
		jwtAuth,
		authServiceCfg.Token.RefreshTokenSecret,
		refreshCookieName,
	)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/verify", h.VerifyEmail)
		r.Post("/login", h.Login)
		r.Post("/token", h.ExchangeAuthToken)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Get("/google", h.oauthRedirect("google"))
		r.Get("/google/callback", h.oauthCallback("google"))
		r.Get("/github", h.oauthRedirect("github"))
		r.Get("/github/callback", h.oauthCallback("github"))

		r.Group(func(r chi.Router) {
			r.Use(refreshGuard)
			r.Get("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(accessGuard)
			r.Delete("/log-out", h.Logout)
		})
	})
}

func (h *authHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if fieldErrs := h.validate.ValidateStruct(dst); fieldErrs != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]any{
			"message": "validation failed",
			"errors":  fieldErrs,
		})
		return false
	}

	return true
}

func (h *authHTTPHandler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response body")
	}
}

func (h *authHTTPHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, payload.MessageResponse{Message: message})
}

// respondUsecaseError translates usecase sentinels to HTTP status codes.
func (h *authHTTPHandler) respondUsecaseError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("auth operation failed")

	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, usecase.ErrEmailNotConfirmed):
		h.respondError(w, http.StatusForbidden, "email not confirmed")
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		h.respondError(w, http.StatusBadRequest, "email already in use")
	case errors.Is(err, usecase.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrTokenExpiredRegenerated):
		h.respondError(w, http.StatusBadRequest, "token expired, a new one has been sent")
	case errors.Is(err, usecase.ErrInvalidToken):
		h.respondError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, usecase.ErrEmailDelivery):
		h.respondError(w, http.StatusBadGateway, "failed to send email")
	default:
		h.respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// setSessionCookies sets the Authentication and Refresh cookies. The shape
// (HttpOnly, Path=/, Max-Age from the configured TTLs) is part of the public
// contract with the web client.
func (h *authHTTPHandler) setSessionCookies(w http.ResponseWriter, tokens *authtypes.Tokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   int(h.authServiceCfg.Token.AccessTokenExpiresIn.Seconds()),
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    tokens.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.authServiceCfg.Token.RefreshTokenExpiresIn.Seconds()),
		HttpOnly: true,
	})
}

// clearSessionCookies expires both cookies.
func (h *authHTTPHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
