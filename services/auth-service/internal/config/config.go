package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// AuthServiceConfig holds the configuration of the auth service. Every
// secret and TTL is required; the service refuses to start without them.
type AuthServiceConfig struct {
	ServerAddress string `env:"AUTH_SERVER_ADDRESS,required"`

	// ClientBaseURL is the public URL of the web client, used to build
	// verification and reset links and as the OAuth handoff redirect target.
	ClientBaseURL string `env:"CLIENT_BASE_URL,required"`

	// RequireVerifiedEmailForLogin rejects password logins from accounts
	// whose email has not been confirmed yet.
	RequireVerifiedEmailForLogin bool `env:"REQUIRE_VERIFIED_EMAIL_FOR_LOGIN"`

	Mongo  MongoConfig
	Token  TokenConfig
	OAuth  OAuthConfig
	Consul ConsulConfig
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI,required"`
	Database string `env:"MONGO_DATABASE,required"`
}

// TokenConfig holds the per-class secret and TTL pairs.
type TokenConfig struct {
	Issuer string `env:"TOKEN_ISSUER,required"`

	AccessTokenSecret    string        `env:"JWT_ACCESS_TOKEN_SECRET,required"`
	AccessTokenExpiresIn time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRES_IN,required"`

	RefreshTokenSecret    string        `env:"JWT_REFRESH_TOKEN_SECRET,required"`
	RefreshTokenExpiresIn time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRES_IN,required"`

	VerificationTokenSecret    string        `env:"JWT_EMAIL_SECRET,required"`
	VerificationTokenExpiresIn time.Duration `env:"JWT_EMAIL_EXPIRES_IN,required"`

	PasswordResetTokenSecret    string        `env:"JWT_PASSWORD_SECRET,required"`
	PasswordResetTokenExpiresIn time.Duration `env:"JWT_PASSWORD_EXPIRES_IN,required"`

	AuthTokenSecret    string        `env:"JWT_AUTH_TOKEN_SECRET,required"`
	AuthTokenExpiresIn time.Duration `env:"JWT_AUTH_TOKEN_EXPIRES_IN,required"`
}

// OAuthConfig holds the per-provider client credentials.
type OAuthConfig struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL,required"`

	GithubClientID     string `env:"GITHUB_CLIENT_ID,required"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET,required"`
	GithubCallbackURL  string `env:"GITHUB_CALLBACK_URL,required"`
}

// ConsulConfig holds the service registration settings.
type ConsulConfig struct {
	Address     string `env:"CONSUL_HTTP_ADDR,required"`
	ServiceName string `env:"CONSUL_SERVICE_NAME,required"`
	ServiceHost string `env:"CONSUL_SERVICE_HOST,required"`
	ServicePort int    `env:"CONSUL_SERVICE_PORT,required"`
}

// NewAuthServiceConfig creates an AuthServiceConfig instance from environment
// variables.
func NewAuthServiceConfig(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}
