package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"swaphub/engine"
	"swaphub/models"
)

type PlaceBidRequest struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	BidderID uuid.UUID `json:"bidderId" binding:"required"`
	Amount   uint32    `json:"amount" binding:"required"`
}

type PlaceBidResponse struct {
	BidID    uuid.UUID `json:"bidId"`
	NewPrice uint32    `json:"newPrice"`
}

type BidView struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"itemId"`
	BidderID   uuid.UUID `json:"bidderId"`
	BidderName string    `json:"bidderName"`
	Amount     uint32    `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Place a bid on an item
// (POST /api/bids)
func (impl *ServerImpl) PostBid(c *gin.Context) {
	const op = "PostBid"
	var request PlaceBidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	result, err := impl.bids.PlaceBid(c.Request.Context(), engine.PlaceBidInput{
		ItemID:   request.ItemID,
		BidderID: request.BidderID,
		Amount:   request.Amount,
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, PlaceBidResponse{
		BidID:    result.BidID,
		NewPrice: result.NewPrice,
	})
}

type AcceptBidRequest struct {
	BidID uuid.UUID `json:"bidId" binding:"required"`
}

type AcceptBidResponse struct {
	ItemTitle string `json:"itemTitle"`
	Amount    uint32 `json:"amount"`
}

// Accept a bid and settle the sale
// (POST /api/bids/accept)
func (impl *ServerImpl) PostBidAccept(c *gin.Context) {
	const op = "PostBidAccept"
	var request AcceptBidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	result, err := impl.bids.AcceptBid(c.Request.Context(), engine.AcceptBidInput{BidID: request.BidID})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, AcceptBidResponse{
		ItemTitle: result.ItemTitle,
		Amount:    result.Amount,
	})
}

// List bids of an item
// (GET /api/items/:itemID/bids)
func (impl *ServerImpl) GetItemBids(c *gin.Context) {
	const op = "GetItemBids"
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid item id"})
		return
	}
	bids, err := impl.queries.ListBidsByItem(c.Request.Context(), itemID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(bids, func(bid models.Bid, _ int) BidView {
		return BidView{
			ID:         bid.ID,
			ItemID:     bid.ItemID,
			BidderID:   bid.BidderID,
			BidderName: bid.BidderName,
			Amount:     bid.Amount,
			CreatedAt:  bid.CreatedAt,
		}
	}))
}
