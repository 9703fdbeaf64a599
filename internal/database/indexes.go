package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	log.Println("EnsureUserIndexes: creating email_unique and username_unique indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName("username_unique").
				SetUnique(true),
		},
	})
	if err != nil {
		log.Println("EnsureUserIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureListIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("lists").Indexes()

	log.Println("EnsureListIndexes: creating ownerId, members and isArchived indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index().SetName("ownerId_index"),
		},
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("members_index"),
		},
		{
			Keys:    bson.D{{Key: "isArchived", Value: 1}},
			Options: options.Index().SetName("isArchived_index"),
		},
	})
	if err != nil {
		log.Println("EnsureListIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureItemIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("items").Indexes()

	log.Println("EnsureItemIndexes: creating listId and isResolved indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "listId", Value: 1}},
			Options: options.Index().SetName("listId_index"),
		},
		{
			Keys:    bson.D{{Key: "isResolved", Value: 1}},
			Options: options.Index().SetName("isResolved_index"),
		},
	})
	if err != nil {
		log.Println("EnsureItemIndexes: index error:", err)
		return err
	}
	return nil
}

// EnsureTokenIndexes makes jti unique in both token collections and puts a
// TTL index on expiresAt, so expired refresh tokens and stale blacklist
// entries are pruned by the store without a background sweeper.
func EnsureTokenIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tokenIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().
				SetName("jti_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().
				SetName("expiresAt_ttl").
				SetExpireAfterSeconds(0),
		},
	}

	for _, collection := range []string{"refresh_tokens", "blacklisted_tokens"} {
		log.Printf("EnsureTokenIndexes: creating jti_unique and expiresAt_ttl indexes on %s", collection)
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, tokenIndexes); err != nil {
			log.Printf("EnsureTokenIndexes: %s index error: %v", collection, err)
			return err
		}
	}
	return nil
}
