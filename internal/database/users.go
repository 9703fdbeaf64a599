package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

// Users is a typed accessor over the users collection, used by the
// middleware layer where a raw *mongo.Database would make testing
// impossible.
type Users struct {
	DB *mongo.Database
}

func (u Users) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	err := u.DB.Collection("users").FindOne(findCtx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	return &user, nil
}
