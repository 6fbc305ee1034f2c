package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// ItemLifecycle 負責商品的狀態轉移與價格欄位
// ACTIVE → SWAPPED 是唯一的轉移，而且不可逆
type ItemLifecycle struct{}

// NewItemLifecycle 建立一個新的 ItemLifecycle 實例
func NewItemLifecycle() *ItemLifecycle {
	return &ItemLifecycle{}
}

// RecordBid 驗證並記錄一筆出價對商品的影響：更新目前價格與最高出價者
func (l *ItemLifecycle) RecordBid(ctx context.Context, tx store.Tx, itemID, bidderID uuid.UUID, amount uint32) (*models.Item, error) {
	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound)
	}
	if item.Status != models.ItemStatusActive {
		return nil, ErrNotAvailable
	}
	if item.OwnerID == bidderID {
		return nil, ErrSelfBid
	}
	if amount <= item.Price {
		return nil, fmt.Errorf("%w: current price is %d", ErrBidTooLow, item.Price)
	}
	item.Price = amount
	item.HighestBidderID = &bidderID
	if err := tx.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CompleteSale 將商品轉為 SWAPPED
// 商品已經不是 ACTIVE 時回傳 ErrAlreadyResolved——這是防止同一個商品
// 被兩個併發的接受操作同時成交的檢查點，兩者恰好只有一個會成功
func (l *ItemLifecycle) CompleteSale(ctx context.Context, tx store.Tx, itemID uuid.UUID) (*models.Item, error) {
	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound)
	}
	if item.Status != models.ItemStatusActive {
		return nil, ErrAlreadyResolved
	}
	item.Status = models.ItemStatusSwapped
	if err := tx.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CompleteSwap 在同一個交易內將兩件商品一起轉為 SWAPPED
// 任一件不是 ACTIVE 就整筆中止，所以不可能只交換到一半
func (l *ItemLifecycle) CompleteSwap(ctx context.Context, tx store.Tx, requestedItemID, offeredItemID uuid.UUID) (*models.Item, *models.Item, error) {
	requested, err := l.CompleteSale(ctx, tx, requestedItemID)
	if err != nil {
		return nil, nil, err
	}
	offered, err := l.CompleteSale(ctx, tx, offeredItemID)
	if err != nil {
		return nil, nil, err
	}
	return requested, offered, nil
}
