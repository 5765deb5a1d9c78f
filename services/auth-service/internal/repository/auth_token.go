package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
)

// AuthTokenRepository defines the interface for cross-domain handoff token
// operations.
type AuthTokenRepository interface {
	// CreateToken creates a new handoff token row.
	CreateToken(ctx context.Context, token *model.AuthToken) (*model.AuthToken, error)

	// GetTokenByUserID retrieves the handoff token for a user.
	GetTokenByUserID(ctx context.Context, userID string) (*model.AuthToken, error)

	// DeleteTokensByUserID removes all handoff tokens for a user.
	DeleteTokensByUserID(ctx context.Context, userID string) error
}

const authTokenCollection = "auth_tokens"

type authTokenMongoRepository struct {
	db *mongo.Database
}

// NewAuthTokenMongoRepository creates a new MongoDB repository for handoff tokens.
func NewAuthTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) AuthTokenRepository {
	collection := db.Collection(authTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth token indexes")
	}

	return &authTokenMongoRepository{db: db}
}

func (r *authTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.AuthToken,
) (*model.AuthToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now

	result, err := r.db.Collection(authTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *authTokenMongoRepository) GetTokenByUserID(
	ctx context.Context,
	userID string,
) (*model.AuthToken, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var token model.AuthToken
	err := r.db.Collection(authTokenCollection).FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *authTokenMongoRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	_, err := r.db.Collection(authTokenCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
