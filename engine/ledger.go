package engine

import (
	"context"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// LedgerRecorder 負責寫入不可變的帳本紀錄
// 純寫入：只在呼叫端已經驗證過的交易內被呼叫，不讀取也不分支，
// 帳本紀錄和觸發它的狀態變更永遠在同一個交易內寫入
type LedgerRecorder struct{}

// NewLedgerRecorder 建立一個新的 LedgerRecorder 實例
func NewLedgerRecorder() *LedgerRecorder {
	return &LedgerRecorder{}
}

// RecordPurchase 記錄一筆點數購買
func (r *LedgerRecorder) RecordPurchase(ctx context.Context, tx store.Tx, toUserID uuid.UUID, amount uint32) error {
	return tx.AppendLedger(ctx, &models.LedgerRecord{
		Type:     models.LedgerTypeCreditPurchase,
		ToUserID: toUserID,
		Credits:  amount,
	})
}

// RecordBidWin 記錄一筆得標成交
func (r *LedgerRecorder) RecordBidWin(ctx context.Context, tx store.Tx, buyerID uuid.UUID, amount uint32, item *models.Item) error {
	return tx.AppendLedger(ctx, &models.LedgerRecord{
		Type:       models.LedgerTypeBidWin,
		FromUserID: &buyerID,
		ToUserID:   item.OwnerID,
		Credits:    amount,
		ItemID:     &item.ID,
		ItemTitle:  item.Title,
	})
}

// RecordSwap 記錄一筆以物易物成交，點數為 0
func (r *LedgerRecorder) RecordSwap(ctx context.Context, tx store.Tx, offer *models.SwapOffer) error {
	return tx.AppendLedger(ctx, &models.LedgerRecord{
		Type:             models.LedgerTypeSwap,
		FromUserID:       &offer.FromUserID,
		ToUserID:         offer.ToUserID,
		Credits:          0,
		ItemID:           offer.RequestedItemID,
		ItemTitle:        offer.RequestedItemTitle,
		OfferedItemID:    offer.OfferedItemID,
		OfferedItemTitle: offer.OfferedItemTitle,
	})
}
