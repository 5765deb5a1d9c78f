package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
	"github.com/citadell/task-manager-api/services/auth-service/internal/repository"
	authtypes "github.com/citadell/task-manager-api/services/auth-service/pkg/types"
	"github.com/citadell/task-manager-api/shared/auth"
	"github.com/citadell/task-manager-api/shared/security"
)

// EmailSender delivers the outbound verification and password reset emails.
// Failures surface immediately to the caller; nothing is queued or retried.
type EmailSender interface {
	SendVerificationEmail(to, name, verifyLink, code string) error
	SendPasswordResetEmail(to, name, resetLink string) error
}

// TokenUsecase defines the business logic for the email verification,
// password reset and OAuth handoff token flows. A token is only authoritative
// as the combination of a valid signature and a matching, unexpired,
// unconsumed database row; the row is the source of truth for single use and
// revocation.
type TokenUsecase interface {
	// InitiateEmailVerification generates a verification token and code for
	// the email, persists them and sends the verification email.
	InitiateEmailVerification(ctx context.Context, email, name string) error

	// VerifyEmail confirms the user's email using the presented token and
	// code. An expired token is replaced and resent, reported as
	// ErrTokenExpiredRegenerated.
	VerifyEmail(ctx context.Context, token, code string) (string, error)

	// InitiatePasswordReset generates a reset token for the email, persists
	// its opaque binding value and sends the reset email.
	InitiatePasswordReset(ctx context.Context, email string) error

	// ResetPassword sets a new password for the account bound to the
	// presented reset token.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// GenerateAuthToken issues a short-lived single-use handoff token for the
	// user, invalidating any previously issued one.
	GenerateAuthToken(ctx context.Context, userID string) (string, error)

	// VerifyAuthToken consumes a handoff token and returns the user id it was
	// issued for. A second call with the same token fails.
	VerifyAuthToken(ctx context.Context, token string) (string, error)
}

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpiredRegenerated = errors.New("token expired, a new one has been sent")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailDelivery           = errors.New("failed to send email")
)

type tokenUsecase struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationTokenRepository
	resetRepo        repository.PasswordResetTokenRepository
	authTokenRepo    repository.AuthTokenRepository
	jwtAuth          auth.JWTAuthenticator
	sender           EmailSender
	authServiceCfg   *config.AuthServiceConfig
}

// NewTokenUsecase creates a new instance of TokenUsecase.
func NewTokenUsecase(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationTokenRepository,
	resetRepo repository.PasswordResetTokenRepository,
	authTokenRepo repository.AuthTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	sender EmailSender,
	authServiceCfg *config.AuthServiceConfig,
) TokenUsecase {
	return &tokenUsecase{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		resetRepo:        resetRepo,
		authTokenRepo:    authTokenRepo,
		jwtAuth:          jwtAuth,
		sender:           sender,
		authServiceCfg:   authServiceCfg,
	}
}

func (u *tokenUsecase) InitiateEmailVerification(ctx context.Context, email, name string) error {
	tokenStr, err := u.generateVerificationToken(email)
	if err != nil {
		return err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	if _, err := u.verificationRepo.CreateToken(ctx, &model.VerificationToken{
		Email:     email,
		Token:     tokenStr,
		Code:      code,
		ExpiresAt: time.Now().Add(u.authServiceCfg.Token.VerificationTokenExpiresIn),
	}); err != nil {
		return err
	}

	// The stored row outlives a failed send so the user can retry.
	verifyLink := fmt.Sprintf("%s/verify-email?token=%s&code=%s", u.authServiceCfg.ClientBaseURL, tokenStr, code)
	if err := u.sender.SendVerificationEmail(email, name, verifyLink, code); err != nil {
		return ErrEmailDelivery
	}

	return nil
}

func (u *tokenUsecase) VerifyEmail(ctx context.Context, token, code string) (string, error) {
	claims := &authtypes.VerificationClaims{}
	if _, err := u.jwtAuth.DecodeTokenWithClaims(
		token,
		u.authServiceCfg.Token.VerificationTokenSecret,
		claims,
	); err != nil {
		return "", ErrInvalidToken
	}

	dbToken, err := u.verificationRepo.GetTokenByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if dbToken.Token != token || dbToken.Code != code {
		return "", ErrInvalidToken
	}

	user, err := u.userRepo.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if user.EmailConfirmed {
		return "Email already confirmed", nil
	}

	if time.Now().After(dbToken.ExpiresAt) {
		if err := u.verificationRepo.DeleteTokensByEmail(ctx, claims.Email); err != nil {
			return "", err
		}
		if err := u.InitiateEmailVerification(ctx, user.Email, user.Name); err != nil {
			return "", err
		}
		return "", ErrTokenExpiredRegenerated
	}

	if err := u.userRepo.MarkEmailConfirmed(ctx, user.ID.Hex()); err != nil {
		return "", err
	}

	if err := u.verificationRepo.DeleteTokensByEmail(ctx, claims.Email); err != nil {
		return "", err
	}

	return "Email confirmed successfully", nil
}

func (u *tokenUsecase) InitiatePasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	return u.issuePasswordResetToken(ctx, user.Email, user.Name)
}

func (u *tokenUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims := &authtypes.PasswordResetClaims{}
	if _, err := u.jwtAuth.DecodeTokenWithClaims(
		token,
		u.authServiceCfg.Token.PasswordResetTokenSecret,
		claims,
	); err != nil {
		return ErrInvalidToken
	}

	dbToken, err := u.resetRepo.GetTokenByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidToken
		}
		return err
	}

	if time.Now().After(dbToken.ExpiresAt) {
		if err := u.resetRepo.DeleteTokensByEmail(ctx, claims.Email); err != nil {
			return err
		}

		user, err := u.userRepo.GetUserByEmail(ctx, claims.Email)
		if err != nil {
			return err
		}
		if err := u.issuePasswordResetToken(ctx, user.Email, user.Name); err != nil {
			return err
		}
		return ErrTokenExpiredRegenerated
	}

	if dbToken.Token != claims.Token {
		return ErrInvalidToken
	}

	if err := u.resetRepo.DeleteTokensByEmail(ctx, claims.Email); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdatePasswordByEmail(ctx, claims.Email, passwordHash); err != nil {
		return err
	}

	return nil
}

func (u *tokenUsecase) GenerateAuthToken(ctx context.Context, userID string) (string, error) {
	// At most one live handoff token per user.
	if err := u.authTokenRepo.DeleteTokensByUserID(ctx, userID); err != nil {
		return "", err
	}

	tokenStr, err := u.generateToken(
		userID,
		u.authServiceCfg.Token.AuthTokenSecret,
		u.authServiceCfg.Token.AuthTokenExpiresIn,
	)
	if err != nil {
		return "", err
	}

	if _, err := u.authTokenRepo.CreateToken(ctx, &model.AuthToken{
		UserID:    userID,
		Token:     tokenStr,
		ExpiresAt: time.Now().Add(u.authServiceCfg.Token.AuthTokenExpiresIn),
	}); err != nil {
		return "", err
	}

	return tokenStr, nil
}

func (u *tokenUsecase) VerifyAuthToken(ctx context.Context, token string) (string, error) {
	claims := &authtypes.TokenClaims{}
	if _, err := u.jwtAuth.DecodeTokenWithClaims(
		token,
		u.authServiceCfg.Token.AuthTokenSecret,
		claims,
	); err != nil {
		return "", ErrInvalidToken
	}

	dbToken, err := u.authTokenRepo.GetTokenByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return "", ErrInvalidToken
	}

	if dbToken.Token != token {
		return "", ErrInvalidToken
	}

	// Single use: consume the row on first successful verification.
	if err := u.authTokenRepo.DeleteTokensByUserID(ctx, claims.UserID); err != nil {
		return "", err
	}

	return claims.UserID, nil
}

// issuePasswordResetToken generates, persists and emails a fresh reset token
// for the given account. Any previously stored row is replaced.
func (u *tokenUsecase) issuePasswordResetToken(ctx context.Context, email, name string) error {
	tokenStr, resetValue, err := u.generatePasswordResetToken(email)
	if err != nil {
		return err
	}

	if err := u.resetRepo.DeleteTokensByEmail(ctx, email); err != nil {
		return err
	}

	if _, err := u.resetRepo.CreateToken(ctx, &model.PasswordResetToken{
		Email:     email,
		Token:     resetValue,
		ExpiresAt: time.Now().Add(u.authServiceCfg.Token.PasswordResetTokenExpiresIn),
	}); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", u.authServiceCfg.ClientBaseURL, tokenStr)
	if err := u.sender.SendPasswordResetEmail(email, name, resetLink); err != nil {
		return ErrEmailDelivery
	}

	return nil
}

// generateVerificationToken creates the email verification JWT.
func (u *tokenUsecase) generateVerificationToken(email string) (string, error) {
	now := time.Now()
	claims := authtypes.VerificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    u.authServiceCfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.authServiceCfg.Token.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(u.authServiceCfg.Token.VerificationTokenExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return u.jwtAuth.GenerateToken(claims, u.authServiceCfg.Token.VerificationTokenSecret)
}

// generatePasswordResetToken creates a password reset JWT bound to a fresh
// opaque value and returns both.
func (u *tokenUsecase) generatePasswordResetToken(email string) (string, string, error) {
	resetValue := uuid.NewString()

	now := time.Now()
	claims := authtypes.PasswordResetClaims{
		Email: email,
		Token: resetValue,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    u.authServiceCfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.authServiceCfg.Token.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(u.authServiceCfg.Token.PasswordResetTokenExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.authServiceCfg.Token.PasswordResetTokenSecret)
	if err != nil {
		return "", "", err
	}

	return tokenStr, resetValue, nil
}

// generateToken creates a JWT carrying only the user id.
func (u *tokenUsecase) generateToken(userID, secret string, expiresIn time.Duration) (string, error) {
	claims := authtypes.TokenClaims{
		UserID:           userID,
		RegisteredClaims: newRegisteredClaims(u.authServiceCfg.Token.Issuer, userID, time.Now(), expiresIn),
	}

	return u.jwtAuth.GenerateToken(claims, secret)
}

// newRegisteredClaims builds the registered claim set shared by every token
// class.
func newRegisteredClaims(issuer, subject string, now time.Time, expiresIn time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{issuer},
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// generateVerificationCode generates a random six digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
