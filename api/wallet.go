package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"swaphub/models"
)

type LedgerRecordView struct {
	ID               uuid.UUID         `json:"id"`
	Type             models.LedgerType `json:"type"`
	FromUserID       *uuid.UUID        `json:"fromUserId,omitempty"`
	ToUserID         uuid.UUID         `json:"toUserId"`
	Credits          uint32            `json:"credits"`
	ItemID           *uuid.UUID        `json:"itemId,omitempty"`
	ItemTitle        string            `json:"itemTitle,omitempty"`
	OfferedItemID    *uuid.UUID        `json:"offeredItemId,omitempty"`
	OfferedItemTitle string            `json:"offeredItemTitle,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type WalletResponse struct {
	UserID       uuid.UUID          `json:"userId"`
	Username     string             `json:"username"`
	Credits      uint32             `json:"credits"`
	ItemsSold    uint32             `json:"itemsSold"`
	ItemsSwapped uint32             `json:"itemsSwapped"`
	History      []LedgerRecordView `json:"history"`
}

// Get wallet balance and transaction history
// (GET /api/wallet/:userID)
func (impl *ServerImpl) GetWallet(c *gin.Context) {
	const op = "GetWallet"
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}
	user, err := impl.queries.FindUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	records, err := impl.queries.ListLedgerByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, WalletResponse{
		UserID:       user.ID,
		Username:     user.Username,
		Credits:      user.Credits,
		ItemsSold:    user.ItemsSold,
		ItemsSwapped: user.ItemsSwapped,
		History: lo.Map(records, func(record models.LedgerRecord, _ int) LedgerRecordView {
			return LedgerRecordView{
				ID:               record.ID,
				Type:             record.Type,
				FromUserID:       record.FromUserID,
				ToUserID:         record.ToUserID,
				Credits:          record.Credits,
				ItemID:           record.ItemID,
				ItemTitle:        record.ItemTitle,
				OfferedItemID:    record.OfferedItemID,
				OfferedItemTitle: record.OfferedItemTitle,
				CreatedAt:        record.CreatedAt,
			}
		}),
	})
}

type BuyCreditsRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Amount uint32    `json:"amount" binding:"required"`
}

type BuyCreditsResponse struct {
	Credits uint32 `json:"credits"`
}

// Purchase credits
// (POST /api/wallet/buy)
func (impl *ServerImpl) PostBuyCredits(c *gin.Context) {
	const op = "PostBuyCredits"
	var request BuyCreditsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	user, err := impl.wallet.BuyCredits(c.Request.Context(), request.UserID, request.Amount)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, BuyCreditsResponse{Credits: user.Credits})
}
