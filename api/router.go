package api

import "github.com/gin-gonic/gin"

// RegisterRoutes 將所有 API 路由掛到 router 上
func (impl *ServerImpl) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/items", impl.PostItem)
	api.GET("/items", impl.GetItems)
	api.GET("/items/:itemID", impl.GetItem)
	api.DELETE("/items/:itemID", impl.DeleteItem)
	api.GET("/items/:itemID/bids", impl.GetItemBids)

	api.POST("/bids", impl.PostBid)
	api.POST("/bids/accept", impl.PostBidAccept)

	api.POST("/swaps", impl.PostSwapOffer)
	api.PUT("/swaps/respond", impl.PutSwapRespond)
	api.POST("/swaps/general", impl.PostGeneralInquiry)
	api.GET("/swaps/incoming/:userID", impl.GetIncomingSwapOffers)
	api.GET("/swaps/sent/:userID", impl.GetSentSwapOffers)
	api.GET("/swaps/:offerID", impl.GetSwapOffer)
	api.DELETE("/swaps/:offerID", impl.DeleteSwapOffer)

	api.GET("/wallet/:userID", impl.GetWallet)
	api.POST("/wallet/buy", impl.PostBuyCredits)

	api.GET("/reviews/eligibility/:sellerID", impl.GetReviewEligibility)

	api.GET("/notifications/stream", impl.GetNotificationStream)
	api.GET("/notifications/:userID", impl.GetNotifications)
	api.PUT("/notifications/:notificationID/read", impl.PutNotificationRead)
}
