package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/config"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

// respondError is the single boundary converting component errors to the
// transport envelope. Components themselves only return typed errors.
func respondError(c *gin.Context, route string, err error) {
	status := apperr.StatusOf(err)
	kind := "error"
	if apperr.IsOperational(err) {
		kind = "fail"
	}
	log.Printf("[%s] returning error %d: %v", route, status, err)
	c.AbortWithStatusJSON(status, gin.H{"status": kind, "message": apperr.MessageOf(err)})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "invalid request body"})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// sanitizedUser is the user shape returned to clients; the password hash
// never leaves the server.
func sanitizedUser(user *models.User) gin.H {
	return gin.H{
		"id":             user.ID.Hex(),
		"email":          user.Email,
		"username":       user.Username,
		"profilePicture": user.ProfilePicture,
		"bio":            user.Bio,
		"status":         user.Status,
	}
}

// sendTokensResponse sets the auth cookie pair and returns the sanitized
// user. Cookies are httpOnly, SameSite=Strict and Secure in production;
// max-ages mirror the token lifetimes.
func sendTokensResponse(c *gin.Context, cfg config.Config, user *models.User, pair *tokens.Pair, statusCode int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", pair.AccessToken, int(cfg.AccessTokenTTL.Seconds()), "/", "", cfg.IsProduction(), true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(cfg.RefreshTokenTTL.Seconds()), "/", "", cfg.IsProduction(), true)

	c.JSON(statusCode, gin.H{
		"status": "success",
		"data":   gin.H{"user": sanitizedUser(user)},
	})
}

func clearTokenCookies(c *gin.Context, cfg config.Config) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", "", -1, "/", "", cfg.IsProduction(), true)
	c.SetCookie("refreshToken", "", -1, "/", "", cfg.IsProduction(), true)
}
