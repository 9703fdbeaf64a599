package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/FandaPeterka/ListManagementApp/internal/config"
	"github.com/FandaPeterka/ListManagementApp/internal/database"
	"github.com/FandaPeterka/ListManagementApp/internal/handlers"
	"github.com/FandaPeterka/ListManagementApp/internal/middleware"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureListIndexes(db); err != nil {
		log.Printf("list index warning: %v", err)
	}
	if err := database.EnsureItemIndexes(db); err != nil {
		log.Printf("item index warning: %v", err)
	}
	if err := database.EnsureTokenIndexes(db); err != nil {
		log.Printf("token index warning: %v", err)
	}

	var blacklist tokens.BlacklistStore = tokens.MongoBlacklist{DB: db}
	if cfg.RedisAddr != "" {
		blacklist = tokens.RedisBlacklist{Client: redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})}
		log.Println("token blacklist backed by redis at:", cfg.RedisAddr)
	}

	tokenService := tokens.NewService(
		tokens.MongoRefreshTokens{DB: db},
		blacklist,
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	users := database.Users{DB: db}
	lists := database.Lists{DB: db}

	requireAuth := middleware.RequireAuth(tokenService)
	ownerOnly := middleware.Authorize(lists, middleware.RoleOwner)
	ownerOrMember := middleware.Authorize(lists, middleware.RoleOwner, middleware.RoleMember)
	memberOnly := middleware.Authorize(lists, middleware.RoleMember)

	r := gin.Default()

	if !cfg.IsTest() {
		r.Use(middleware.RateLimit(10, 30))
	}

	user := r.Group("/users")
	{
		user.POST("/signup", handlers.Signup(db, tokenService, cfg))
		user.POST("/login", handlers.Login(db, tokenService, cfg))
		user.POST("/logout", requireAuth, handlers.Logout(tokenService, cfg))
		user.GET("/me", requireAuth, handlers.GetCurrentUser(db))
		user.PATCH("/me", requireAuth, handlers.UpdateProfile(db))
		user.POST("/change-password", requireAuth, handlers.ChangePassword(db))
	}

	r.POST("/tokens/refresh-token", middleware.ValidateRefresh(tokenService, users), handlers.RefreshTokens(tokenService, cfg))

	list := r.Group("/lists", requireAuth)
	{
		list.GET("", handlers.GetLists(db))
		list.POST("", handlers.CreateList(db))

		list.GET("/:listId", ownerOrMember, handlers.GetListByID(db))
		list.PATCH("/:listId/updateName", ownerOnly, handlers.UpdateListName(db))
		list.DELETE("/:listId/delete", ownerOnly, handlers.DeleteList(db))
		list.PATCH("/:listId/archive", ownerOnly, handlers.ArchiveList(db))
		list.PATCH("/:listId/restore", ownerOnly, handlers.RestoreArchivedList(db))
		list.PATCH("/:listId/restoreDeleted", ownerOnly, handlers.RestoreDeletedList(db))
		list.DELETE("/:listId/permanent", ownerOnly, handlers.PermanentlyDeleteList(db))

		list.GET("/:listId/members", ownerOrMember, handlers.GetMembers(db))
		list.POST("/:listId/members", ownerOnly, handlers.AddMember(db))
		list.DELETE("/:listId/members/:memberId", ownerOnly, handlers.RemoveMember(db))
		list.DELETE("/:listId/membership", memberOnly, handlers.RemoveSelf(db))

		list.POST("/:listId/items", ownerOrMember, handlers.AddItem(db))
		list.GET("/:listId/items", ownerOrMember, handlers.GetItems(db))
		list.PATCH("/:listId/items/:itemId", ownerOrMember, handlers.MarkItemResolved(db))
		list.DELETE("/:listId/items/:itemId", ownerOrMember, handlers.DeleteItem(db))
	}

	// Collection-level utilities live on sibling paths: gin rejects a
	// static segment at the same position as :listId.
	r.DELETE("/lists-deleted", requireAuth, handlers.EmptyTrash(db))
	r.POST("/lists-item-counts", requireAuth, handlers.ItemCounts(db))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
