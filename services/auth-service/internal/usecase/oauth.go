package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
	"github.com/citadell/task-manager-api/services/auth-service/internal/repository"
	"github.com/citadell/task-manager-api/shared/provider"
)

// OAuthUsecase maps third-party provider profiles to local users. It never
// issues tokens itself; the resolved user id is handed to the auth usecase's
// handoff token path.
type OAuthUsecase interface {
	// ResolveIdentity finds or creates the local user for a provider
	// profile. A provider login proves ownership of the email, so an
	// existing unconfirmed account is confirmed and a new account is created
	// already confirmed, with no password.
	ResolveIdentity(ctx context.Context, profile *provider.Profile) (*model.User, error)
}

var ErrMissingProfileEmail = errors.New("provider profile has no email")

type oauthUsecase struct {
	userRepo repository.UserRepository
}

// NewOAuthUsecase creates a new instance of OAuthUsecase.
func NewOAuthUsecase(userRepo repository.UserRepository) OAuthUsecase {
	return &oauthUsecase{userRepo: userRepo}
}

func (u *oauthUsecase) ResolveIdentity(ctx context.Context, profile *provider.Profile) (*model.User, error) {
	if profile.Email == "" {
		return nil, ErrMissingProfileEmail
	}

	email := strings.ToLower(profile.Email)

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		if !user.EmailConfirmed {
			if err := u.userRepo.MarkEmailConfirmed(ctx, user.ID.Hex()); err != nil {
				return nil, err
			}
			user.EmailConfirmed = true
		}
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	return u.userRepo.CreateUser(ctx, &model.User{
		Email:          email,
		Name:           profile.Name,
		AvatarURL:      profile.AvatarURL,
		PasswordHash:   nil,
		EmailConfirmed: true,
	})
}
