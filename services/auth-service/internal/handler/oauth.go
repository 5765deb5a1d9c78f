package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
)

const oauthStateCookieName = "oauth_state"

// oauthRedirect starts the OAuth flow by redirecting to the provider's
// consent page with a fresh state value bound to a short-lived cookie.
func (h *authHTTPHandler) oauthRedirect(providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.providers.Get(providerName)
		if err != nil {
			h.respondError(w, http.StatusNotFound, "unknown provider")
			return
		}

		state, err := generateState()
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, "something went wrong")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
		})

		http.Redirect(w, r, p.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// oauthCallback finishes the OAuth flow: it resolves the provider profile to
// a local user, issues a single-use handoff token and redirects back to the
// client, which exchanges the token for session cookies.
func (h *authHTTPHandler) oauthCallback(providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.providers.Get(providerName)
		if err != nil {
			h.respondError(w, http.StatusNotFound, "unknown provider")
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookieName)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			h.respondError(w, http.StatusUnauthorized, "invalid oauth state")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			h.respondError(w, http.StatusBadRequest, "missing authorization code")
			return
		}

		profile, err := p.ExchangeProfile(r.Context(), code)
		if err != nil {
			h.logger.Error().Err(err).Str("provider", providerName).Msg("failed to exchange oauth code")
			h.respondError(w, http.StatusUnauthorized, "oauth exchange failed")
			return
		}

		user, err := h.oauthUsecase.ResolveIdentity(r.Context(), profile)
		if err != nil {
			h.respondUsecaseError(w, err)
			return
		}

		handoffToken, err := h.tokenUsecase.GenerateAuthToken(r.Context(), user.ID.Hex())
		if err != nil {
			h.respondUsecaseError(w, err)
			return
		}

		redirectURL := fmt.Sprintf("%s?token=%s", h.authServiceCfg.ClientBaseURL, handoffToken)
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}
}

func generateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
