package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List is a shared checklist. The owner is added to members at creation
// time, but owner and member remain independent roles at authorization.
type List struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID    primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	Title      string               `bson:"title" json:"title"`
	IsArchived bool                 `bson:"isArchived" json:"isArchived"`
	Members    []primitive.ObjectID `bson:"members" json:"members"`
	Items      []primitive.ObjectID `bson:"items" json:"items"`
	DeletedAt  *time.Time           `bson:"deletedAt" json:"deletedAt"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether userID is in the members set.
func (l *List) HasMember(userID primitive.ObjectID) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}
