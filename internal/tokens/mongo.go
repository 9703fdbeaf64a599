package tokens

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

// MongoRefreshTokens stores refresh-token records in the refresh_tokens
// collection. The unique jti index makes delete-by-jti the atomicity point
// the rotation flow relies on; the TTL index on expiresAt prunes expired
// records.
type MongoRefreshTokens struct {
	DB *mongo.Database
}

func (m MongoRefreshTokens) Insert(ctx context.Context, token models.RefreshToken) error {
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.DB.Collection("refresh_tokens").InsertOne(insertCtx, token)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m MongoRefreshTokens) Delete(ctx context.Context, jti string) (bool, error) {
	deleteCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.DB.Collection("refresh_tokens").DeleteOne(deleteCtx, bson.M{"jti": jti})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m MongoRefreshTokens) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {
	findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var token models.RefreshToken
	err := m.DB.Collection("refresh_tokens").FindOne(findCtx, bson.M{"jti": jti}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MongoBlacklist is the default revocation list, a TTL collection keyed by
// jti.
type MongoBlacklist struct {
	DB *mongo.Database
}

func (m MongoBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.DB.Collection("blacklisted_tokens").InsertOne(insertCtx, models.BlacklistedToken{
		JTI:       jti,
		ExpiresAt: expiresAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m MongoBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	countCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := m.DB.Collection("blacklisted_tokens").CountDocuments(countCtx, bson.M{"jti": jti})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
