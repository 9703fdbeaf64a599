package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

// Context keys set by the guards below.
const (
	CtxUserID = "userId"
	CtxUser   = "user"
	CtxJTI    = "jti"
)

// AccessVerifier is the slice of the token service the access guard needs.
type AccessVerifier interface {
	ParseAccess(tokenString string) (*tokens.Claims, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// RequireAuth verifies the accessToken cookie on every protected request:
// signature first, then the revocation list. On success the decoded
// subject is attached as the request's user identity.
func RequireAuth(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie("accessToken")
		if err != nil || raw == "" {
			log.Println("[AUTH] [ERROR] access token missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "access token is missing"})
			return
		}

		claims, err := verifier.ParseAccess(raw)
		if err != nil {
			log.Println("[AUTH] [ERROR] access token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "invalid access token"})
			return
		}

		blacklisted, err := verifier.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			log.Println("[AUTH] [ERROR] blacklist lookup failed:", err)
			abortError(c, err)
			return
		}
		if blacklisted {
			log.Printf("[AUTH] [WARN] blacklisted access token: %s", claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "token has been revoked"})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid subject claim:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "invalid access token"})
			return
		}

		c.Set(CtxUserID, userID)
		c.Next()
	}
}

func abortError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	kind := "error"
	if apperr.IsOperational(err) {
		kind = "fail"
	}
	c.AbortWithStatusJSON(status, gin.H{"status": kind, "message": apperr.MessageOf(err)})
}
