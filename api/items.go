package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"swaphub/adapters/store"
	"swaphub/engine"
	"swaphub/models"
)

type ItemView struct {
	ID              uuid.UUID         `json:"id"`
	OwnerID         uuid.UUID         `json:"ownerId"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Category        string            `json:"category,omitempty"`
	Images          []string          `json:"images"`
	Status          models.ItemStatus `json:"status"`
	Price           uint32            `json:"price"`
	HighestBidderID *uuid.UUID        `json:"highestBidderId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func itemView(item models.Item) ItemView {
	images := item.Images
	if images == nil {
		images = []string{}
	}
	return ItemView{
		ID:              item.ID,
		OwnerID:         item.OwnerID,
		Title:           item.Title,
		Description:     item.Description,
		Category:        item.Category,
		Images:          images,
		Status:          item.Status,
		Price:           item.Price,
		HighestBidderID: item.HighestBidderID,
		CreatedAt:       item.CreatedAt,
	}
}

type CreateItemRequest struct {
	OwnerID     uuid.UUID `json:"ownerId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	Price       uint32    `json:"price"`
}

// Create a listing
// (POST /api/items)
func (impl *ServerImpl) PostItem(c *gin.Context) {
	const op = "PostItem"
	var request CreateItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if request.Images == nil {
		request.Images = []string{}
	}
	item := &models.Item{
		OwnerID:     request.OwnerID,
		Title:       request.Title,
		Description: impl.htmlChecker.Sanitize(request.Description),
		Category:    request.Category,
		Images:      request.Images,
		Status:      models.ItemStatusActive,
		Price:       request.Price,
	}
	err := impl.store.RunTransaction(c.Request.Context(), func(tx store.Tx) error {
		if _, err := tx.GetUser(c.Request.Context(), request.OwnerID); err != nil {
			return err
		}
		return tx.CreateItem(c.Request.Context(), item)
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, itemView(*item))
}

// List items
// (GET /api/items)
func (impl *ServerImpl) GetItems(c *gin.Context) {
	const op = "GetItems"
	items, err := impl.queries.ListItems(c.Request.Context())
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(items, func(item models.Item, _ int) ItemView {
		return itemView(item)
	}))
}

// Get item details
// (GET /api/items/:itemID)
func (impl *ServerImpl) GetItem(c *gin.Context) {
	const op = "GetItem"
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid item id"})
		return
	}
	item, err := impl.queries.FindItem(c.Request.Context(), itemID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, itemView(*item))
}

// Delete a listing
// (DELETE /api/items/:itemID)
func (impl *ServerImpl) DeleteItem(c *gin.Context) {
	const op = "DeleteItem"
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid item id"})
		return
	}
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}
	// 只有商品擁有者可以刪除，已成交的商品是歷史紀錄不可刪除
	err = impl.store.RunTransaction(c.Request.Context(), func(tx store.Tx) error {
		item, err := tx.GetItem(c.Request.Context(), itemID)
		if err != nil {
			return err
		}
		if item.OwnerID != userID {
			return engine.ErrInvalidInput
		}
		if item.Status != models.ItemStatusActive {
			return engine.ErrAlreadyResolved
		}
		return tx.DeleteItem(c.Request.Context(), itemID)
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}
