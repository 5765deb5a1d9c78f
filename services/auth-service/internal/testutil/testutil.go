package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
)

// NewTestConfig returns a config with short TTLs and fixed secrets for tests.
func NewTestConfig() *config.AuthServiceConfig {
	return &config.AuthServiceConfig{
		ServerAddress: "localhost:0",
		ClientBaseURL: "http://localhost:3000",
		Token: config.TokenConfig{
			Issuer:                      "task-manager",
			AccessTokenSecret:           "access-secret",
			AccessTokenExpiresIn:        15 * time.Minute,
			RefreshTokenSecret:          "refresh-secret",
			RefreshTokenExpiresIn:       7 * 24 * time.Hour,
			VerificationTokenSecret:     "email-secret",
			VerificationTokenExpiresIn:  time.Hour,
			PasswordResetTokenSecret:    "password-secret",
			PasswordResetTokenExpiresIn: time.Hour,
			AuthTokenSecret:             "auth-token-secret",
			AuthTokenExpiresIn:          2 * time.Minute,
		},
	}
}

// FakeUserRepository is an in-memory UserRepository.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[string]*model.User)}
}

func (r *FakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	clone := *user
	r.users[user.ID.Hex()] = &clone

	return user, nil
}

func (r *FakeUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	clone := *user
	return &clone, nil
}

func (r *FakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *FakeUserRepository) UpdatePasswordByEmail(
	_ context.Context,
	email, passwordHash string,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			user.PasswordHash = &passwordHash
			user.UpdatedAt = time.Now()
			clone := *user
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *FakeUserRepository) MarkEmailConfirmed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.EmailConfirmed = true
	return nil
}

func (r *FakeUserRepository) SetRefreshTokenHash(_ context.Context, id, refreshTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.RefreshTokenHash = &refreshTokenHash
	return nil
}

func (r *FakeUserRepository) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.RefreshTokenHash = nil
	return nil
}

// DeleteUser removes a user directly; only used by tests.
func (r *FakeUserRepository) DeleteUser(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// Count returns the number of stored users.
func (r *FakeUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// FakeVerificationTokenRepository is an in-memory VerificationTokenRepository.
type FakeVerificationTokenRepository struct {
	mu     sync.Mutex
	tokens []*model.VerificationToken
}

func NewFakeVerificationTokenRepository() *FakeVerificationTokenRepository {
	return &FakeVerificationTokenRepository{}
}

func (r *FakeVerificationTokenRepository) CreateToken(
	_ context.Context,
	token *model.VerificationToken,
) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	token.ID = bson.NewObjectID()
	token.CreatedAt = now
	token.UpdatedAt = now

	clone := *token
	r.tokens = append(r.tokens, &clone)

	return token, nil
}

func (r *FakeVerificationTokenRepository) GetTokenByEmail(
	_ context.Context,
	email string,
) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.tokens) - 1; i >= 0; i-- {
		if r.tokens[i].Email == email {
			clone := *r.tokens[i]
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *FakeVerificationTokenRepository) DeleteTokensByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tokens[:0]
	for _, token := range r.tokens {
		if token.Email != email {
			kept = append(kept, token)
		}
	}
	r.tokens = kept

	return nil
}

// CountByEmail returns the number of stored rows for an email.
func (r *FakeVerificationTokenRepository) CountByEmail(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, token := range r.tokens {
		if token.Email == email {
			count++
		}
	}
	return count
}

// ExpireTokens rewrites the expiry of every row for an email; only used by
// tests.
func (r *FakeVerificationTokenRepository) ExpireTokens(email string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.Email == email {
			token.ExpiresAt = expiresAt
		}
	}
}

// FakePasswordResetTokenRepository is an in-memory PasswordResetTokenRepository.
type FakePasswordResetTokenRepository struct {
	mu     sync.Mutex
	tokens []*model.PasswordResetToken
}

func NewFakePasswordResetTokenRepository() *FakePasswordResetTokenRepository {
	return &FakePasswordResetTokenRepository{}
}

func (r *FakePasswordResetTokenRepository) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	token.ID = bson.NewObjectID()
	token.CreatedAt = now
	token.UpdatedAt = now

	clone := *token
	r.tokens = append(r.tokens, &clone)

	return token, nil
}

func (r *FakePasswordResetTokenRepository) GetTokenByEmail(
	_ context.Context,
	email string,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.tokens) - 1; i >= 0; i-- {
		if r.tokens[i].Email == email {
			clone := *r.tokens[i]
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *FakePasswordResetTokenRepository) DeleteTokensByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tokens[:0]
	for _, token := range r.tokens {
		if token.Email != email {
			kept = append(kept, token)
		}
	}
	r.tokens = kept

	return nil
}

// CountByEmail returns the number of stored rows for an email.
func (r *FakePasswordResetTokenRepository) CountByEmail(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, token := range r.tokens {
		if token.Email == email {
			count++
		}
	}
	return count
}

// ExpireTokens rewrites the expiry of every row for an email; only used by
// tests.
func (r *FakePasswordResetTokenRepository) ExpireTokens(email string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.Email == email {
			token.ExpiresAt = expiresAt
		}
	}
}

// FakeAuthTokenRepository is an in-memory AuthTokenRepository.
type FakeAuthTokenRepository struct {
	mu     sync.Mutex
	tokens []*model.AuthToken
}

func NewFakeAuthTokenRepository() *FakeAuthTokenRepository {
	return &FakeAuthTokenRepository{}
}

func (r *FakeAuthTokenRepository) CreateToken(
	_ context.Context,
	token *model.AuthToken,
) (*model.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	token.ID = bson.NewObjectID()
	token.CreatedAt = now
	token.UpdatedAt = now

	clone := *token
	r.tokens = append(r.tokens, &clone)

	return token, nil
}

func (r *FakeAuthTokenRepository) GetTokenByUserID(
	_ context.Context,
	userID string,
) (*model.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.tokens) - 1; i >= 0; i-- {
		if r.tokens[i].UserID == userID {
			clone := *r.tokens[i]
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *FakeAuthTokenRepository) DeleteTokensByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tokens[:0]
	for _, token := range r.tokens {
		if token.UserID != userID {
			kept = append(kept, token)
		}
	}
	r.tokens = kept

	return nil
}

// ExpireTokens rewrites the expiry of every row for a user; only used by
// tests.
func (r *FakeAuthTokenRepository) ExpireTokens(userID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.UserID == userID {
			token.ExpiresAt = expiresAt
		}
	}
}

// SentEmail records a single delivery made through the FakeEmailSender.
type SentEmail struct {
	Kind string // "verification" or "password_reset"
	To   string
	Name string
	Link string
	Code string
}

// FakeEmailSender records outbound emails instead of delivering them.
type FakeEmailSender struct {
	mu     sync.Mutex
	Emails []SentEmail

	// FailWith, when set, is returned by every send.
	FailWith error
}

func NewFakeEmailSender() *FakeEmailSender {
	return &FakeEmailSender{}
}

func (s *FakeEmailSender) SendVerificationEmail(to, name, verifyLink, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	s.Emails = append(s.Emails, SentEmail{
		Kind: "verification",
		To:   to,
		Name: name,
		Link: verifyLink,
		Code: code,
	})
	return nil
}

func (s *FakeEmailSender) SendPasswordResetEmail(to, name, resetLink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	s.Emails = append(s.Emails, SentEmail{
		Kind: "password_reset",
		To:   to,
		Name: name,
		Link: resetLink,
	})
	return nil
}

// LastEmail returns the most recently recorded email.
func (s *FakeEmailSender) LastEmail() (SentEmail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Emails) == 0 {
		return SentEmail{}, errors.New("no emails sent")
	}
	return s.Emails[len(s.Emails)-1], nil
}
