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

// VerificationTokenRepository defines the interface for email verification
// token operations. There is no update in place; a refresh is always a delete
// followed by an insert.
type VerificationTokenRepository interface {
	// CreateToken creates a new verification token row.
	CreateToken(ctx context.Context, token *model.VerificationToken) (*model.VerificationToken, error)

	// GetTokenByEmail retrieves the latest verification token for an email.
	GetTokenByEmail(ctx context.Context, email string) (*model.VerificationToken, error)

	// DeleteTokensByEmail removes all verification tokens for an email.
	DeleteTokensByEmail(ctx context.Context, email string) error
}

const verificationTokenCollection = "verification_tokens"

type verificationTokenMongoRepository struct {
	db *mongo.Database
}

// NewVerificationTokenMongoRepository creates a new MongoDB repository for
// email verification tokens.
func NewVerificationTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationTokenRepository {
	collection := db.Collection(verificationTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification token indexes")
	}

	return &verificationTokenMongoRepository{db: db}
}

func (r *verificationTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.VerificationToken,
) (*model.VerificationToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now

	result, err := r.db.Collection(verificationTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *verificationTokenMongoRepository) GetTokenByEmail(
	ctx context.Context,
	email string,
) (*model.VerificationToken, error) {
	// A race between two concurrent initiations can leave more than one row;
	// the latest one is authoritative.
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var token model.VerificationToken
	err := r.db.Collection(verificationTokenCollection).FindOne(ctx, bson.M{"email": email}, opts).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *verificationTokenMongoRepository) DeleteTokensByEmail(ctx context.Context, email string) error {
	_, err := r.db.Collection(verificationTokenCollection).DeleteMany(ctx, bson.M{"email": email})
	return err
}
