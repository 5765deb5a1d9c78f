package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// Tokens holds a freshly issued access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the payload of access, refresh and handoff tokens.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// VerificationClaims is the payload of email verification tokens.
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// PasswordResetClaims is the payload of password reset tokens. Token carries
// the opaque stored value the JWT is bound to.
type PasswordResetClaims struct {
	Email string `json:"email"`
	Token string `json:"token"`
	jwt.RegisteredClaims
}
