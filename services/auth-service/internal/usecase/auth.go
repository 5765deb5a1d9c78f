package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
	"github.com/citadell/task-manager-api/services/auth-service/internal/repository"
	authtypes "github.com/citadell/task-manager-api/services/auth-service/pkg/types"
	"github.com/citadell/task-manager-api/shared/auth"
	"github.com/citadell/task-manager-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// Register creates the user and kicks off email verification. It does
	// not log the user in; registration and first login are separate steps.
	Register(ctx context.Context, params RegisterParams) (string, error)

	// Login validates the credentials and issues a fresh access/refresh
	// token pair, overwriting the previously stored refresh token hash.
	Login(ctx context.Context, params LoginParams) (*model.User, *authtypes.Tokens, error)

	// IssueTokens signs an access and a refresh token for the user and
	// persists the refresh token hash on the user record.
	IssueTokens(ctx context.Context, userID string) (*authtypes.Tokens, error)

	// RefreshAccessToken issues a fresh access token when the presented
	// refresh token matches the stored hash for the user.
	RefreshAccessToken(ctx context.Context, userID, refreshToken string) (*model.User, string, error)

	// Logout clears the stored refresh token hash so the outstanding
	// refresh token can no longer be used.
	Logout(ctx context.Context, userID string) error

	// ForgotPassword starts the password reset flow for the email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword completes the password reset flow.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidateAuthToken consumes a handoff token and loads the user it was
	// issued for.
	ValidateAuthToken(ctx context.Context, token string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Avatar   string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists  = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
)

type authUsecase struct {
	userRepo       repository.UserRepository
	tokenUsecase   TokenUsecase
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	tokenUsecase TokenUsecase,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:       userRepo,
		tokenUsecase:   tokenUsecase,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (string, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return "", err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		Name:         params.Name,
		AvatarURL:    params.Avatar,
		PasswordHash: &passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrUserAlreadyExists
		}
		return "", err
	}

	if err := u.tokenUsecase.InitiateEmailVerification(ctx, user.Email, user.Name); err != nil {
		return "", err
	}

	return "User registered successfully. Please check your email for verification", nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*model.User, *authtypes.Tokens, error) {
	user, err := u.validateCredentials(ctx, params.Email, params.Password)
	if err != nil {
		return nil, nil, err
	}

	if u.authServiceCfg.RequireVerifiedEmailForLogin && !user.EmailConfirmed {
		return nil, nil, ErrEmailNotConfirmed
	}

	tokens, err := u.IssueTokens(ctx, user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (u *authUsecase) IssueTokens(ctx context.Context, userID string) (*authtypes.Tokens, error) {
	accessToken, err := u.generateAccountToken(
		userID,
		u.authServiceCfg.Token.AccessTokenSecret,
		u.authServiceCfg.Token.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateAccountToken(
		userID,
		u.authServiceCfg.Token.RefreshTokenSecret,
		u.authServiceCfg.Token.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	// Overwriting the stored hash invalidates any previously issued refresh
	// token for this user.
	refreshTokenHash, err := security.HashPassword(refreshToken)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SetRefreshTokenHash(ctx, userID, refreshTokenHash); err != nil {
		return nil, err
	}

	return &authtypes.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) RefreshAccessToken(
	ctx context.Context,
	userID, refreshToken string,
) (*model.User, string, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrInvalidToken
		}
		return nil, "", err
	}

	if user.RefreshTokenHash == nil {
		return nil, "", ErrInvalidToken
	}

	if ok, err := security.VerifyPassword(refreshToken, *user.RefreshTokenHash); err != nil {
		return nil, "", err
	} else if !ok {
		return nil, "", ErrInvalidToken
	}

	accessToken, err := u.generateAccountToken(
		userID,
		u.authServiceCfg.Token.AccessTokenSecret,
		u.authServiceCfg.Token.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	return u.userRepo.ClearRefreshToken(ctx, userID)
}

func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	return u.tokenUsecase.InitiatePasswordReset(ctx, email)
}

func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	return u.tokenUsecase.ResetPassword(ctx, token, newPassword)
}

func (u *authUsecase) ValidateAuthToken(ctx context.Context, token string) (*model.User, error) {
	userID, err := u.tokenUsecase.VerifyAuthToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}

// validateCredentials reports the same error for an unknown email and a
// wrong password so the two cases cannot be told apart.
func (u *authUsecase) validateCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-only accounts have no password to compare against.
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if ok, err := security.VerifyPassword(password, *user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (u *authUsecase) generateAccountToken(userID, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := authtypes.TokenClaims{
		UserID:           userID,
		RegisteredClaims: newRegisteredClaims(u.authServiceCfg.Token.Issuer, userID, now, expiresIn),
	}

	return u.jwtAuth.GenerateToken(claims, secret)
}
