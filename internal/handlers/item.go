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
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

type addItemRequest struct {
	ItemText string `json:"itemText" binding:"required,min=1,max=500"`
}

type markItemResolvedRequest struct {
	IsResolved *bool `json:"isResolved" binding:"required"`
}

// AddItem inserts the item and pushes its id onto the parent list's items
// array in one transaction, so the list's item set and the items
// collection cannot drift apart.
func AddItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /lists/:listId/items"

		var req addItemRequest
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

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}
		defer session.EndSession(ctx)

		now := time.Now()
		item := models.Item{
			ItemText:   req.ItemText,
			IsResolved: false,
			ListID:     listID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var list models.List
			if err := db.Collection("lists").FindOne(sessCtx, bson.M{"_id": listID}).Decode(&list); err != nil {
				return nil, apperr.NotFound("list not found")
			}

			res, err := db.Collection("items").InsertOne(sessCtx, item)
			if err != nil {
				return nil, apperr.Internal("db error", err)
			}
			item.ID = res.InsertedID.(primitive.ObjectID)

			_, err = db.Collection("lists").UpdateByID(sessCtx, listID, bson.M{
				"$push": bson.M{"items": item.ID},
				"$set":  bson.M{"updatedAt": now},
			})
			if err != nil {
				return nil, apperr.Internal("db error", err)
			}
			return nil, nil
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Printf("[ITEM] [INFO] item %s added to list %s", item.ID.Hex(), listID.Hex())
		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"item": item}})
	}
}

// GetItems returns a list's items, optionally filtered by resolution
// status, unresolved first and newest first within each group.
func GetItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /lists/:listId/items"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		query := bson.M{"listId": listID}
		switch c.Query("status") {
		case "resolved":
			query["isResolved"] = true
		case "unresolved":
			query["isResolved"] = false
		case "":
		default:
			respondError(c, route, apperr.BadRequest("invalid status filter"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOpts := options.Find().SetSort(bson.D{
			{Key: "isResolved", Value: 1},
			{Key: "createdAt", Value: -1},
		})

		cursor, err := db.Collection("items").Find(ctx, query, findOpts)
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		items := []models.Item{}
		if err := cursor.All(ctx, &items); err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"items": items}})
	}
}

func MarkItemResolved(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /lists/:listId/items/:itemId"

		var req markItemResolvedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		itemID, err := itemIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var item models.Item
		err = db.Collection("items").FindOneAndUpdate(
			ctx,
			bson.M{"_id": itemID, "listId": listID},
			bson.M{"$set": bson.M{"isResolved": *req.IsResolved, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&item)
		if err != nil {
			respondError(c, route, apperr.NotFound("item not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"item": item}})
	}
}

// DeleteItem removes the item and pulls its id from the parent list inside
// one transaction, mirroring AddItem.
func DeleteItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /lists/:listId/items/:itemId"

		listID, err := listIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		itemID, err := itemIDParam(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, route, apperr.Internal("db error", err))
			return
		}
		defer session.EndSession(ctx)

		var item models.Item
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var list models.List
			if err := db.Collection("lists").FindOne(sessCtx, bson.M{"_id": listID}).Decode(&list); err != nil {
				return nil, apperr.NotFound("list not found")
			}

			err := db.Collection("items").FindOneAndDelete(sessCtx, bson.M{"_id": itemID, "listId": listID}).Decode(&item)
			if err != nil {
				return nil, apperr.NotFound("item not found")
			}

			_, err = db.Collection("lists").UpdateByID(sessCtx, listID, bson.M{
				"$pull": bson.M{"items": itemID},
				"$set":  bson.M{"updatedAt": time.Now()},
			})
			if err != nil {
				return nil, apperr.Internal("db error", err)
			}
			return nil, nil
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Printf("[ITEM] [INFO] item %s deleted from list %s", itemID.Hex(), listID.Hex())
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"item": item}})
	}
}

func itemIDParam(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid item id")
	}
	return id, nil
}
