package provider

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrMissingGoogleEmail = errors.New("google profile has no email")

// GoogleProvider resolves identities through the Google OAuth2 flow.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given client
// credentials and callback URL.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL returns the Google consent page URL for the given state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeProfile exchanges the authorization code for an access token and
// fetches the user's profile from the Google userinfo endpoint.
func (p *GoogleProvider) ExchangeProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	oauth2Service, err := oauth2api.NewService(ctx, option.WithHTTPClient(p.config.Client(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := oauth2Service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}

	if userInfo.Email == "" {
		return nil, ErrMissingGoogleEmail
	}

	return &Profile{
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		AvatarURL: userInfo.Picture,
	}, nil
}
