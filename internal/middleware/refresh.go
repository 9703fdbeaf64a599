package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FandaPeterka/ListManagementApp/internal/models"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

// RefreshValidator is the slice of the token service the refresh guard
// needs.
type RefreshValidator interface {
	ValidateRefresh(ctx context.Context, tokenString string) (*tokens.Claims, error)
}

type UserFinder interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ValidateRefresh guards the refresh endpoint: it checks the refreshToken
// cookie against signature, blacklist and store, loads the referenced
// user, and attaches user and jti for the rotation handler. Every failure
// rejects with 401 so callers cannot probe which check tripped.
func ValidateRefresh(validator RefreshValidator, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie("refreshToken")
		if err != nil || raw == "" {
			log.Println("[AUTH] [ERROR] refresh token missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "refresh token is missing"})
			return
		}

		claims, err := validator.ValidateRefresh(c.Request.Context(), raw)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh token validation failed:", err)
			abortError(c, err)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid subject claim:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "invalid refresh token"})
			return
		}

		user, err := users.FindUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Printf("[AUTH] [WARN] refresh token for missing user: %s", claims.Subject)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "invalid refresh token"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxJTI, claims.ID)
		c.Next()
	}
}
