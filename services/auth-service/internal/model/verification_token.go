package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VerificationToken represents a pending email verification. Token is a
// signed JWT carrying the email; Code is a six digit numeric string generated
// independently of the JWT. ExpiresAt is the authoritative expiry; the JWT's
// own expiry is not consulted at verification time.
type VerificationToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Token     string        `bson:"token"`
	Code      string        `bson:"code"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
