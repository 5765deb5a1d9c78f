package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role represents a user's authorization level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a user in the authentication system. PasswordHash is nil
// for accounts created through an OAuth provider. RefreshTokenHash holds the
// hash of the most recently issued refresh token; at most one refresh token
// per user is valid at a time.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Email            string        `bson:"email"`
	Name             string        `bson:"name"`
	AvatarURL        string        `bson:"avatar_url"`
	Role             Role          `bson:"role"`
	PasswordHash     *string       `bson:"password_hash"`
	EmailConfirmed   bool          `bson:"email_confirmed"`
	RefreshTokenHash *string       `bson:"refresh_token_hash"`
	CreatedAt        time.Time     `bson:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at"`
}
