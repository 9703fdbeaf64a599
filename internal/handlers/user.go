package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/config"
	"github.com/FandaPeterka/ListManagementApp/internal/middleware"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=1,max=39"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	Status      *string `json:"status" binding:"omitempty,oneof=idle focusing busy"`
	NewUsername *string `json:"newUsername" binding:"omitempty,min=1,max=39"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func Signup(db *mongo.Database, svc *tokens.Service, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/signup"

		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		username := strings.TrimSpace(req.Username)

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, route, apperr.Internal("password hash failed", err))
			return
		}

		now := time.Now()
		user := models.User{
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
			Bio:          "",
			Status:       models.StatusIdle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(err) {
			log.Println("[AUTH] [ERROR] signup duplicate identity:", email)
			respondError(c, route, apperr.Conflict("email or username already in use"))
			return
		}
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		pair, err := svc.Issue(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		sendTokensResponse(c, cfg, &user, pair, http.StatusCreated)
	}
}

func Login(db *mongo.Database, svc *tokens.Service, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/login"

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login unknown email")
			respondError(c, route, apperr.Unauthorized("invalid email or password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials for:", email)
			respondError(c, route, apperr.Unauthorized("invalid email or password"))
			return
		}

		pair, err := svc.Issue(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user login succeeded:", email)
		sendTokensResponse(c, cfg, &user, pair, http.StatusOK)
	}
}

// Logout blacklists the refresh token's jti until the token's own expiry
// claim, which also revokes the paired access token (both carry the same
// jti). A missing cookie still counts as a successful logout.
func Logout(svc *tokens.Service, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/logout"

		raw, err := c.Cookie("refreshToken")
		if err != nil || raw == "" {
			clearTokenCookies(c, cfg)
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": "user logged out successfully"})
			return
		}

		claims, err := svc.ParseRefresh(raw)
		if err != nil {
			log.Println("[AUTH] [ERROR] logout with invalid refresh token:", err)
			respondError(c, route, apperr.BadRequest("invalid refresh token"))
			return
		}

		if err := svc.Blacklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			respondError(c, route, err)
			return
		}

		clearTokenCookies(c, cfg)
		log.Println("[AUTH] [INFO] user logged out, jti revoked:", claims.ID)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "user logged out successfully"})
	}
}

func GetCurrentUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me"

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, route, apperr.NotFound("user not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": sanitizedUser(&user)}})
	}
}

func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /users/me"

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if req.Bio != nil {
			update["bio"] = *req.Bio
		}
		if req.Status != nil {
			update["status"] = *req.Status
		}
		if req.NewUsername != nil {
			update["username"] = strings.TrimSpace(*req.NewUsername)
		}

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": userID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&user)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, route, apperr.Conflict("username already in use"))
			return
		}
		if err != nil {
			respondError(c, route, apperr.NotFound("user not found"))
			return
		}

		log.Println("[AUTH] [INFO] profile updated for:", user.Username)
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": sanitizedUser(&user)}})
	}
}

func ChangePassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/change-password"

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, route, apperr.NotFound("user not found"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			log.Println("[AUTH] [ERROR] change password with wrong current password:", user.Username)
			respondError(c, route, apperr.Unauthorized("current password is incorrect"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, route, apperr.Internal("password hash failed", err))
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{"password": string(hash), "updatedAt": time.Now()},
		})
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		log.Println("[AUTH] [INFO] password changed for:", user.Username)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "password changed successfully"})
	}
}
