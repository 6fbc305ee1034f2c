package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewEligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

// Check whether a buyer may review a seller
// (GET /api/reviews/eligibility/:sellerID)
func (impl *ServerImpl) GetReviewEligibility(c *gin.Context) {
	const op = "GetReviewEligibility"
	sellerID, err := uuid.Parse(c.Param("sellerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid seller id"})
		return
	}
	buyerID, err := uuid.Parse(c.Query("buyerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid buyer id"})
		return
	}
	eligible, err := impl.reviews.HasTransacted(c.Request.Context(), buyerID, sellerID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, ReviewEligibilityResponse{Eligible: eligible})
}
