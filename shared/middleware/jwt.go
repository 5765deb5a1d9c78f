package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/citadell/task-manager-api/shared/auth"
)

type contextKey struct{ name string }

var (
	// UserClaimsKey holds the validated claims of the authenticating cookie.
	UserClaimsKey = contextKey{"user_claims"}

	// RawTokenKey holds the raw token string of the authenticating cookie.
	RawTokenKey = contextKey{"raw_token"}
)

// NewJWTCookieMiddleware returns a middleware that authenticates requests by
// validating the JWT carried in the named cookie. The validated claims and
// the raw token string are stored on the request context.
func NewJWTCookieMiddleware(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				http.Error(w, "missing authentication cookie", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(cookie.Value, secret, claims); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			ctx = context.WithValue(ctx, RawTokenKey, cookie.Value)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id stored by the
// middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(jwt.MapClaims)
	if !ok {
		return "", false
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", false
	}

	return userID, true
}

// RawTokenFromContext extracts the raw cookie token stored by the middleware.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(RawTokenKey).(string)
	return token, ok && token != ""
}
