package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken is one outstanding refresh token, keyed by the jti that
// both issued JWTs carry. The expiresAt field is TTL-indexed, so expired
// records are pruned by the store itself.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JTI       string             `bson:"jti" json:"jti"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
