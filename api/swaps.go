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

type SwapOfferView struct {
	ID                 uuid.UUID              `json:"id"`
	RequestedItemID    *uuid.UUID             `json:"requestedItemId,omitempty"`
	RequestedItemTitle string                 `json:"requestedItemTitle"`
	OfferedItemID      *uuid.UUID             `json:"offeredItemId,omitempty"`
	OfferedItemTitle   string                 `json:"offeredItemTitle"`
	FromUserID         uuid.UUID              `json:"fromUserId"`
	FromUserName       string                 `json:"fromUserName"`
	ToUserID           uuid.UUID              `json:"toUserId"`
	ToUserName         string                 `json:"toUserName"`
	Status             models.SwapOfferStatus `json:"status"`
	CreatedAt          time.Time              `json:"createdAt"`
}

func swapOfferView(offer models.SwapOffer) SwapOfferView {
	return SwapOfferView{
		ID:                 offer.ID,
		RequestedItemID:    offer.RequestedItemID,
		RequestedItemTitle: offer.RequestedItemTitle,
		OfferedItemID:      offer.OfferedItemID,
		OfferedItemTitle:   offer.OfferedItemTitle,
		FromUserID:         offer.FromUserID,
		FromUserName:       offer.FromUserName,
		ToUserID:           offer.ToUserID,
		ToUserName:         offer.ToUserName,
		Status:             offer.Status,
		CreatedAt:          offer.CreatedAt,
	}
}

type CreateSwapOfferRequest struct {
	FromUserID      uuid.UUID `json:"fromUserId" binding:"required"`
	RequestedItemID uuid.UUID `json:"requestedItemId" binding:"required"`
	OfferedItemID   uuid.UUID `json:"offeredItemId" binding:"required"`
}

// Create a swap offer
// (POST /api/swaps)
func (impl *ServerImpl) PostSwapOffer(c *gin.Context) {
	const op = "PostSwapOffer"
	var request CreateSwapOfferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	offer, err := impl.swaps.CreateOffer(c.Request.Context(), engine.CreateOfferInput{
		FromUserID:      request.FromUserID,
		RequestedItemID: request.RequestedItemID,
		OfferedItemID:   request.OfferedItemID,
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, swapOfferView(*offer))
}

type RespondSwapRequest struct {
	OfferID uuid.UUID `json:"offerId" binding:"required"`
	Accept  *bool     `json:"accept" binding:"required"`
}

type RespondSwapResponse struct {
	Status models.SwapOfferStatus `json:"status"`
}

// Accept or reject a swap offer
// (PUT /api/swaps/respond)
func (impl *ServerImpl) PutSwapRespond(c *gin.Context) {
	const op = "PutSwapRespond"
	var request RespondSwapRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	result, err := impl.swaps.Respond(c.Request.Context(), engine.RespondInput{
		OfferID: request.OfferID,
		Accept:  *request.Accept,
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, RespondSwapResponse{Status: result.Status})
}

type GeneralInquiryRequest struct {
	FromUserID uuid.UUID `json:"fromUserId" binding:"required"`
	ToUserID   uuid.UUID `json:"toUserId" binding:"required"`
}

// Create or fetch the general inquiry thread between two users
// (POST /api/swaps/general)
func (impl *ServerImpl) PostGeneralInquiry(c *gin.Context) {
	const op = "PostGeneralInquiry"
	var request GeneralInquiryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	offer, err := impl.swaps.CreateGeneralInquiry(c.Request.Context(), engine.CreateGeneralInquiryInput{
		FromUserID: request.FromUserID,
		ToUserID:   request.ToUserID,
	})
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, swapOfferView(*offer))
}

// Get a swap offer
// (GET /api/swaps/:offerID)
func (impl *ServerImpl) GetSwapOffer(c *gin.Context) {
	const op = "GetSwapOffer"
	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid offer id"})
		return
	}
	offer, err := impl.queries.FindSwapOffer(c.Request.Context(), offerID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, swapOfferView(*offer))
}

// Delete a swap offer
// (DELETE /api/swaps/:offerID)
func (impl *ServerImpl) DeleteSwapOffer(c *gin.Context) {
	const op = "DeleteSwapOffer"
	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid offer id"})
		return
	}
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}
	if err := impl.swaps.DeleteOffer(c.Request.Context(), engine.DeleteOfferInput{
		OfferID: offerID,
		UserID:  userID,
	}); err != nil {
		writeError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List swap offers received by a user
// (GET /api/swaps/incoming/:userID)
func (impl *ServerImpl) GetIncomingSwapOffers(c *gin.Context) {
	impl.listSwapOffers(c, "GetIncomingSwapOffers", true)
}

// List swap offers sent by a user
// (GET /api/swaps/sent/:userID)
func (impl *ServerImpl) GetSentSwapOffers(c *gin.Context) {
	impl.listSwapOffers(c, "GetSentSwapOffers", false)
}

func (impl *ServerImpl) listSwapOffers(c *gin.Context, op string, incoming bool) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}
	offers, err := impl.queries.ListSwapOffersByUser(c.Request.Context(), userID, incoming)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(offers, func(offer models.SwapOffer, _ int) SwapOfferView {
		return swapOfferView(offer)
	}))
}
