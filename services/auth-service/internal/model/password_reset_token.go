package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken represents a pending password reset. Token is an opaque
// random value, not the JWT handed to the user; the JWT embeds this value and
// a reset succeeds only when both match. The stored value binds the bearer
// token to server-side state so a reset link cannot be replayed once the row
// is gone.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Token     string        `bson:"token"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
