package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

var errInvalidResourceID = apperr.BadRequest("invalid resource identifier")

// Accepted roles for Authorize.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ListResolver loads the list a request targets, either directly or
// through an item's parent list.
type ListResolver interface {
	ListByID(ctx context.Context, id primitive.ObjectID) (*models.List, error)
	ListByItemID(ctx context.Context, itemID primitive.ObjectID) (*models.List, error)
}

// Authorize gates a list- or item-scoped route on the caller's relation to
// the resolved list. Owner and member are checked independently: an owner
// who is not in the members set does not pass a member-only route.
func Authorize(resolver ListResolver, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Value(CtxUserID).(primitive.ObjectID)
		if !ok {
			log.Println("[AUTHZ] [ERROR] userId missing in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "unauthorized"})
			return
		}

		list, err := resolveList(c, resolver)
		if err != nil {
			abortError(c, err)
			return
		}

		isOwner := list.OwnerID == userID
		isMember := list.HasMember(userID)

		for _, role := range allowedRoles {
			if (isOwner && role == RoleOwner) || (isMember && role == RoleMember) {
				c.Next()
				return
			}
		}

		log.Printf("[AUTHZ] [WARN] user %s lacks permission on list %s", userID.Hex(), list.ID.Hex())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "fail", "message": "you do not have permission to perform this action"})
	}
}

func resolveList(c *gin.Context, resolver ListResolver) (*models.List, error) {
	if raw := c.Param("listId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errInvalidResourceID
		}
		return resolver.ListByID(c.Request.Context(), id)
	}

	if raw := c.Param("itemId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errInvalidResourceID
		}
		return resolver.ListByItemID(c.Request.Context(), id)
	}

	return nil, errInvalidResourceID
}
