package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FandaPeterka/ListManagementApp/internal/config"
	"github.com/FandaPeterka/ListManagementApp/internal/middleware"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

// RefreshTokens rotates the refresh token the ValidateRefresh middleware
// already vetted: the old record is consumed, a fresh pair replaces both
// cookies. A lost race against a concurrent rotation surfaces as 401.
func RefreshTokens(svc *tokens.Service, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /tokens/refresh-token"

		user := c.MustGet(middleware.CtxUser).(*models.User)
		jti := c.MustGet(middleware.CtxJTI).(string)

		pair, err := svc.Rotate(c.Request.Context(), jti, user.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Println("[TOKEN] [INFO] tokens rotated for user:", user.ID.Hex())
		sendTokensResponse(c, cfg, user, pair, http.StatusOK)
	}
}
