package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlacklistedToken revokes a jti regardless of its signature validity.
// Its own expiry mirrors the revoked token's, so the TTL index prunes the
// record once the token could no longer verify anyway.
type BlacklistedToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JTI       string             `bson:"jti" json:"jti"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}
