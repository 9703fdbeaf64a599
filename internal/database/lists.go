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

// Lists resolves the list a request targets, either directly by list id or
// through an item's parent list. The authorization middleware is its only
// consumer.
type Lists struct {
	DB *mongo.Database
}

func (l Lists) ListByID(ctx context.Context, id primitive.ObjectID) (*models.List, error) {
	findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var list models.List
	err := l.DB.Collection("lists").FindOne(findCtx, bson.M{"_id": id}).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("list not found")
	}
	if err != nil {
		return nil, apperr.Internal("list lookup failed", err)
	}
	return &list, nil
}

func (l Lists) ListByItemID(ctx context.Context, itemID primitive.ObjectID) (*models.List, error) {
	findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var item models.Item
	err := l.DB.Collection("items").FindOne(findCtx, bson.M{"_id": itemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("item not found")
	}
	if err != nil {
		return nil, apperr.Internal("item lookup failed", err)
	}

	return l.ListByID(ctx, item.ListID)
}
