package engine

import (
	"context"

	"github.com/google/uuid"

	"swaphub/adapters/store"
)

// Reviews 負責評價資格的查詢
// 純讀取，不進交易
type Reviews struct {
	queries store.Queries
}

// NewReviews 建立一個新的 Reviews 實例
func NewReviews(q store.Queries) *Reviews {
	return &Reviews{queries: q}
}

// HasTransacted 回傳兩個使用者之間是否有成交紀錄
// 有成交紀錄才能互相評價；自己對自己永遠回傳 false
func (r *Reviews) HasTransacted(ctx context.Context, reviewerID, revieweeID uuid.UUID) (bool, error) {
	if reviewerID == uuid.Nil || revieweeID == uuid.Nil {
		return false, ErrInvalidInput
	}
	if reviewerID == revieweeID {
		return false, nil
	}
	return r.queries.HasLedgerPair(ctx, reviewerID, revieweeID)
}
