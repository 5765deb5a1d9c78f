package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var ErrMissingGithubEmail = errors.New("github profile has no email")

const (
	githubUserURL       = "https://api.github.com/user"
	githubUserEmailsURL = "https://api.github.com/user/emails"
)

// GithubProvider resolves identities through the GitHub OAuth2 flow.
type GithubProvider struct {
	config *oauth2.Config
}

// NewGithubProvider creates a GithubProvider with the given client
// credentials and callback URL.
func NewGithubProvider(clientID, clientSecret, callbackURL string) *GithubProvider {
	return &GithubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *GithubProvider) Name() string {
	return "github"
}

// AuthCodeURL returns the GitHub authorization page URL for the given state.
func (p *GithubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeProfile exchanges the authorization code for an access token and
// fetches the user's profile from the GitHub API. GitHub omits the email from
// the profile response when the user hides it, so the primary address is
// fetched separately in that case.
func (p *GithubProvider) ExchangeProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	client := p.config.Client(ctx, token)

	var user struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, githubUserURL, &user); err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		email, err = p.fetchPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &Profile{
		Email:     email,
		Name:      name,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (p *GithubProvider) fetchPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, githubUserEmailsURL, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}

	return "", ErrMissingGithubEmail
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("status code is not OK")
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
