package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values shown to other list members.
const (
	StatusIdle     = "idle"
	StatusFocusing = "focusing"
	StatusBusy     = "busy"
)

// User represents the application user account.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Username       string             `bson:"username" json:"username"`
	PasswordHash   string             `bson:"password" json:"-"`
	ProfilePicture *string            `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MemberProfile is the subset of a user document exposed to fellow
// list members.
type MemberProfile struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	ProfilePicture *string            `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Status         string             `bson:"status" json:"status"`
}
