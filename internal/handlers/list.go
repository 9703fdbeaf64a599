package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/middleware"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

type createListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

type updateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

type addMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

type itemCountsRequest struct {
	ListIDs []string `json:"listIds" binding:"required,min=1"`
}

func CreateList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /lists"

		var req createListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ownerID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		now := time.Now()
		list := models.List{
			OwnerID:    ownerID,
			Title:      req.Title,
			IsArchived: false,
			// The creator starts out as a member; the authorizer never
			// assumes this, it only reads what is stored here.
			Members:   []primitive.ObjectID{ownerID},
			Items:     []primitive.ObjectID{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("lists").InsertOne(ctx, list)
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}
		list.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[LIST] [INFO] list created:", list.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"list": list}})
	}
}

// GetLists pages through the caller's lists. The type filter mirrors the
// visibility rules: archived and deleted views are owner-scoped, the
// default view hides soft-deleted lists.
func GetLists(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /lists"

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, route, apperr.BadRequest(err.Error()))
			return
		}

		filter := bson.M{"members": userID}
		switch c.DefaultQuery("type", "all") {
		case "active":
			filter["deletedAt"] = nil
			filter["isArchived"] = false
		case "archived":
			filter["deletedAt"] = nil
			filter["isArchived"] = true
			filter["ownerId"] = userID
		case "deleted":
			filter["deletedAt"] = bson.M{"$ne": nil}
			filter["ownerId"] = userID
		case "all":
			filter["deletedAt"] = nil
			filter["$or"] = bson.A{
				bson.M{"ownerId": userID},
				bson.M{"isArchived": false},
			}
		default:
			respondError(c, route, apperr.BadRequest("invalid list type filter"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOpts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("lists").Find(ctx, filter, findOpts)
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		lists := []models.List{}
		if err := cursor.All(ctx, &lists); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		total, err := db.Collection("lists").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data": gin.H{
				"lists": lists,
				"total": total,
				"page":  page,
				"limit": limit,
			},
		})
	}
}

func GetListByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /lists/:listId"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var list models.List
		err = db.Collection("lists").FindOne(ctx, bson.M{
			"_id":       listID,
			"members":   userID,
			"deletedAt": nil,
		}).Decode(&list)
		if err != nil {
			respondError(c, route, apperr.NotFound("list not found or access denied"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"list": list}})
	}
}

func UpdateListName(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /lists/:listId/updateName"

		var req updateListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updateListField(c, db, route, bson.M{"title": req.Title})
	}
}

// DeleteList soft-deletes: the list moves to the trash view and stays
// recoverable until permanently deleted.
func DeleteList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateListField(c, db, "DELETE /lists/:listId/delete", bson.M{"deletedAt": time.Now()})
	}
}

func RestoreDeletedList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateListField(c, db, "PATCH /lists/:listId/restoreDeleted", bson.M{"deletedAt": nil})
	}
}

func ArchiveList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateListField(c, db, "PATCH /lists/:listId/archive", bson.M{"isArchived": true})
	}
}

func RestoreArchivedList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateListField(c, db, "PATCH /lists/:listId/restore", bson.M{"isArchived": false})
	}
}

func GetMembers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /lists/:listId/members"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var list models.List
		if err := db.Collection("lists").FindOne(ctx, bson.M{"_id": listID}).Decode(&list); err != nil {
			respondError(c, route, apperr.NotFound("list not found"))
			return
		}

		cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": list.Members}})
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		members := []models.MemberProfile{}
		if err := cursor.All(ctx, &members); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"members": members}})
	}
}

func AddMember(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /lists/:listId/members"

		var req addMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"username": req.Username}).Decode(&user); err != nil {
			respondError(c, route, apperr.NotFound("user not found"))
			return
		}

		var list models.List
		if err := db.Collection("lists").FindOne(ctx, bson.M{"_id": listID}).Decode(&list); err != nil {
			respondError(c, route, apperr.NotFound("list not found"))
			return
		}

		if list.HasMember(user.ID) {
			respondError(c, route, apperr.BadRequest("user is already a member of the list"))
			return
		}

		updated, err := applyListUpdate(ctx, db, listID, bson.M{
			"$push": bson.M{"members": user.ID},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Printf("[LIST] [INFO] member %s added to list %s", user.Username, listID.Hex())
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"list": updated}})
	}
}

func RemoveMember(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /lists/:listId/members/:memberId"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		memberID, err := primitive.ObjectIDFromHex(c.Param("memberId"))
		if err != nil {
			respondError(c, route, apperr.BadRequest("invalid member id"))
			return
		}

		removeListMember(c, db, route, listID, memberID)
	}
}

// RemoveSelf lets a member leave a list. The owner cannot leave their own
// list; they archive or delete it instead.
func RemoveSelf(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /lists/:listId/membership"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var list models.List
		if err := db.Collection("lists").FindOne(ctx, bson.M{"_id": listID}).Decode(&list); err != nil {
			respondError(c, route, apperr.NotFound("list not found"))
			return
		}

		if list.OwnerID == userID {
			respondError(c, route, apperr.BadRequest("owner cannot be removed from the list"))
			return
		}

		removeListMember(c, db, route, listID, userID)
	}
}

func PermanentlyDeleteList(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /lists/:listId/permanent"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var list models.List
		if err := db.Collection("lists").FindOneAndDelete(ctx, bson.M{"_id": listID}).Decode(&list); err != nil {
			respondError(c, route, apperr.NotFound("list not found"))
			return
		}

		if _, err := db.Collection("items").DeleteMany(ctx, bson.M{"listId": listID}); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		log.Println("[LIST] [INFO] list permanently deleted:", listID.Hex())
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"list": list}})
	}
}

// EmptyTrash permanently deletes every soft-deleted list the caller owns,
// together with the lists' items.
func EmptyTrash(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /lists-deleted"

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("lists").Find(ctx, bson.M{
			"ownerId":   userID,
			"deletedAt": bson.M{"$ne": nil},
		})
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		var lists []models.List
		if err := cursor.All(ctx, &lists); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		if len(lists) == 0 {
			c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"deletedCount": 0}})
			return
		}

		listIDs := make([]primitive.ObjectID, 0, len(lists))
		for _, list := range lists {
			listIDs = append(listIDs, list.ID)
		}

		if _, err := db.Collection("lists").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": listIDs}}); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}
		if _, err := db.Collection("items").DeleteMany(ctx, bson.M{"listId": bson.M{"$in": listIDs}}); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		log.Printf("[LIST] [INFO] trash emptied for user %s: %d lists", userID.Hex(), len(listIDs))
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"deletedCount": len(listIDs)}})
	}
}

// ItemCounts feeds the overview chart: item totals for the caller's active
// lists among the requested ids.
func ItemCounts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /lists-item-counts"

		var req itemCountsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		listIDs := make([]primitive.ObjectID, 0, len(req.ListIDs))
		for _, raw := range req.ListIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, route, apperr.BadRequest("one or more listIds are invalid"))
				return
			}
			listIDs = append(listIDs, id)
		}

		userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("lists").Find(ctx, bson.M{
			"_id":        bson.M{"$in": listIDs},
			"members":    userID,
			"isArchived": false,
			"deletedAt":  nil,
		})
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		var lists []models.List
		if err := cursor.All(ctx, &lists); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		counts := make([]gin.H, 0, len(lists))
		for _, list := range lists {
			counts = append(counts, gin.H{
				"listId":    list.ID.Hex(),
				"title":     list.Title,
				"itemCount": len(list.Items),
			})
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"counts": counts}})
	}
}

func listIDParam(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("listId"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid list id")
	}
	return id, nil
}

func updateListField(c *gin.Context, db *mongo.Database, route string, fields bson.M) {
	listID, err := listIDParam(c)
	if err != nil {
		respondError(c, route, err)
		return
	}

	fields["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := applyListUpdate(ctx, db, listID, bson.M{"$set": fields})
	if err != nil {
		respondError(c, route, err)
		return
	}

	log.Printf("[LIST] [INFO] %s applied to list %s", route, listID.Hex())
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"list": updated}})
}

func removeListMember(c *gin.Context, db *mongo.Database, route string, listID, memberID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var list models.List
	if err := db.Collection("lists").FindOne(ctx, bson.M{"_id": listID}).Decode(&list); err != nil {
		respondError(c, route, apperr.NotFound("list not found"))
		return
	}

	if !list.HasMember(memberID) {
		respondError(c, route, apperr.BadRequest("user is not a member of the list"))
		return
	}

	updated, err := applyListUpdate(ctx, db, listID, bson.M{
		"$pull": bson.M{"members": memberID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		respondError(c, route, err)
		return
	}

	log.Printf("[LIST] [INFO] member %s removed from list %s", memberID.Hex(), listID.Hex())
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"list": updated}})
}

func applyListUpdate(ctx context.Context, db *mongo.Database, listID primitive.ObjectID, update bson.M) (*models.List, error) {
	var list models.List
	err := db.Collection("lists").FindOneAndUpdate(
		ctx,
		bson.M{"_id": listID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&list)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("list not found")
	}
	if err != nil {
		return nil, apperr.Internal("db error", err)
	}
	return &list, nil
}
