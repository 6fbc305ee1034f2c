package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"swaphub/adapters/store"
	"swaphub/engine"
)

// ErrorResponse 是所有錯誤回應的共用格式
type ErrorResponse struct {
	Message string `json:"message"`
}

// 引擎錯誤到 HTTP 狀態碼的對應
// 找不到實體回 404、輸入不合法回 400、業務規則拒絕回 409、
// 重試額度用盡回 503 請呼叫端稍後再試，其餘一律 500 且不洩漏細節
func statusFromError(err error) int {
	switch {
	case errors.Is(err, engine.ErrUserNotFound),
		errors.Is(err, engine.ErrItemNotFound),
		errors.Is(err, engine.ErrBidNotFound),
		errors.Is(err, engine.ErrOfferNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSelfBid),
		errors.Is(err, engine.ErrBidTooLow),
		errors.Is(err, engine.ErrNotAvailable),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrAlreadyResolved),
		errors.Is(err, engine.ErrSelfSwap),
		errors.Is(err, engine.ErrItemsUnavailable):
		return http.StatusConflict
	case errors.Is(err, store.ErrTxRetryExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, op string, err error) {
	status := statusFromError(err)
	switch status {
	case http.StatusInternalServerError:
		slog.Error("Fail to handle request", slog.String("op", op), slog.Any("error", err))
		c.JSON(status, ErrorResponse{Message: "internal server error"})
	case http.StatusServiceUnavailable:
		c.JSON(status, ErrorResponse{Message: "server busy, please try again"})
	default:
		c.JSON(status, ErrorResponse{Message: err.Error()})
	}
}
