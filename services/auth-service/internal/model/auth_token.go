package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthToken represents a single-use cross-domain handoff credential issued
// after an OAuth callback. It is consumed by the client within a short TTL to
// obtain the regular access and refresh cookies. At most one live AuthToken
// exists per user.
type AuthToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"user_id"`
	Token     string        `bson:"token"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
