package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item belongs to exactly one list.
type Item struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemText   string             `bson:"itemText" json:"itemText"`
	IsResolved bool               `bson:"isResolved" json:"isResolved"`
	ListID     primitive.ObjectID `bson:"listId" json:"listId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
