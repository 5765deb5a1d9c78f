package handler

import (
	"net/http"
	"strings"

	"github.com/citadell/task-manager-api/services/auth-service/internal/payload"
	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	"github.com/citadell/task-manager-api/shared/middleware"
)

func (h *authHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, payload.MessageResponse{Message: message})
}

func (h *authHTTPHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	code := r.URL.Query().Get("code")
	if token == "" || code == "" {
		h.respondError(w, http.StatusBadRequest, "token and code are required")
		return
	}

	message, err := h.tokenUsecase.VerifyEmail(r.Context(), token, code)
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, payload.MessageResponse{Message: message})
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
	})
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.setSessionCookies(w, tokens)
	h.respondJSON(w, http.StatusOK, payload.NewUserResponse(user))
}

func (h *authHTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	refreshToken, ok := middleware.RawTokenFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, accessToken, err := h.authUsecase.RefreshAccessToken(r.Context(), userID, refreshToken)
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.authServiceCfg.Token.AccessTokenExpiresIn.Seconds()),
		HttpOnly: true,
	})
	h.respondJSON(w, http.StatusOK, payload.NewUserResponse(user))
}

func (h *authHTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.authUsecase.Logout(r.Context(), userID); err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.clearSessionCookies(w)
	h.respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Logged out successfully"})
}

// ExchangeAuthToken exchanges a single-use OAuth handoff token for the
// regular session cookies.
func (h *authHTTPHandler) ExchangeAuthToken(w http.ResponseWriter, r *http.Request) {
	var req payload.AuthTokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authUsecase.ValidateAuthToken(r.Context(), req.Token)
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	tokens, err := h.authUsecase.IssueTokens(r.Context(), user.ID.Hex())
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.setSessionCookies(w, tokens)
	h.respondJSON(w, http.StatusOK, payload.NewUserResponse(user))
}
