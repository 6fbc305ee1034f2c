package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// BidEngine 負責出價與得標的跨實體交易
// 每個操作都是對 store 的單一原子交易：讀取所有需要的實體、驗證不變量、
// 在同一個交易內寫入所有異動，整筆成功或整筆失敗
type BidEngine struct {
	store     store.Store
	accounts  *AccountManager
	lifecycle *ItemLifecycle
	ledger    *LedgerRecorder
	notifier  *Notifier
	options   engineOptions
}

// NewBidEngine 建立一個新的 BidEngine 實例
func NewBidEngine(s store.Store, opts ...Option) *BidEngine {
	return &BidEngine{
		store:     s,
		accounts:  NewAccountManager(),
		lifecycle: NewItemLifecycle(),
		ledger:    NewLedgerRecorder(),
		notifier:  NewNotifier(),
		options:   newEngineOptions("BidEngine", opts...),
	}
}

// PlaceBidInput 是 PlaceBid 的輸入，進交易前先驗證
type PlaceBidInput struct {
	ItemID   uuid.UUID
	BidderID uuid.UUID
	Amount   uint32
}

// PlaceBidResult 是 PlaceBid 成功後的結果
type PlaceBidResult struct {
	BidID    uuid.UUID
	NewPrice uint32
}

// PlaceBid 驗證並記錄一筆出價
// 出價不檢查也不保留出價者的點數，餘額留到接受出價時才檢查
func (e *BidEngine) PlaceBid(ctx context.Context, in PlaceBidInput) (PlaceBidResult, error) {
	const op = "engine.BidEngine.PlaceBid"

	if in.ItemID == uuid.Nil || in.BidderID == uuid.Nil {
		return PlaceBidResult{}, fmt.Errorf("%w: missing item or bidder", ErrInvalidInput)
	}
	if in.Amount == 0 {
		return PlaceBidResult{}, fmt.Errorf("%w: bid amount must be positive", ErrInvalidInput)
	}

	var result PlaceBidResult
	var notices []models.Notification
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		// 交易可能因衝突重跑，重置上一次嘗試累積的狀態
		notices = notices[:0]

		bidder, err := tx.GetUser(ctx, in.BidderID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		item, err := e.lifecycle.RecordBid(ctx, tx, in.ItemID, in.BidderID, in.Amount)
		if err != nil {
			return err
		}

		bid := &models.Bid{
			ItemID:     in.ItemID,
			BidderID:   in.BidderID,
			BidderName: bidder.Username,
			Amount:     in.Amount,
		}
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  item.OwnerID,
			Title:   "New Bid Received",
			Message: fmt.Sprintf("Someone placed a bid of %d CR on your %q.", in.Amount, item.Title),
			Type:    models.NotificationTypeNewBid,
			Link:    "/dashboard",
		}
		if err := e.notifier.Emit(ctx, tx, notification); err != nil {
			return err
		}
		notices = append(notices, *notification)

		result = PlaceBidResult{BidID: bid.ID, NewPrice: item.Price}
		return nil
	})
	if err != nil {
		return PlaceBidResult{}, err
	}

	publishEvents(e.options.logger, e.options.events, notices)
	e.options.logger.Info("Bid placed",
		slog.String("op", op),
		slog.String("itemID", in.ItemID.String()),
		slog.String("bidderID", in.BidderID.String()),
		slog.Int64("amount", int64(in.Amount)))
	return result, nil
}

// AcceptBidInput 是 AcceptBid 的輸入
type AcceptBidInput struct {
	BidID uuid.UUID
}

// AcceptBidResult 是 AcceptBid 成功後的結果
type AcceptBidResult struct {
	ItemTitle string
	Amount    uint32
}

// AcceptBid 接受一筆出價並完成成交
// 商品必須仍然是 ACTIVE（擋下同商品的另一個併發接受），
// 買家的餘額在接受當下重新檢查——出價之後點數可能已經花在別的地方，
// 出價從來不保留資金
func (e *BidEngine) AcceptBid(ctx context.Context, in AcceptBidInput) (AcceptBidResult, error) {
	const op = "engine.BidEngine.AcceptBid"

	if in.BidID == uuid.Nil {
		return AcceptBidResult{}, fmt.Errorf("%w: missing bid", ErrInvalidInput)
	}

	var result AcceptBidResult
	var notices []models.Notification
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		notices = notices[:0]

		bid, err := tx.GetBid(ctx, in.BidID)
		if err != nil {
			return notFound(err, ErrBidNotFound)
		}
		item, err := e.lifecycle.CompleteSale(ctx, tx, bid.ItemID)
		if err != nil {
			return err
		}
		if _, err := e.accounts.Debit(ctx, tx, bid.BidderID, bid.Amount); err != nil {
			return err
		}
		if _, err := e.accounts.Credit(ctx, tx, item.OwnerID, bid.Amount, CounterItemsSold); err != nil {
			return err
		}
		if err := e.ledger.RecordBidWin(ctx, tx, bid.BidderID, bid.Amount, item); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  bid.BidderID,
			Title:   "Auction Won!",
			Message: fmt.Sprintf("You successfully acquired %q for %d CR.", item.Title, bid.Amount),
			Type:    models.NotificationTypeBidAccepted,
			Link:    "/dashboard",
		}
		if err := e.notifier.Emit(ctx, tx, notification); err != nil {
			return err
		}
		notices = append(notices, *notification)

		result = AcceptBidResult{ItemTitle: item.Title, Amount: bid.Amount}
		return nil
	})
	if err != nil {
		return AcceptBidResult{}, err
	}

	publishEvents(e.options.logger, e.options.events, notices)
	e.options.logger.Info("Bid accepted",
		slog.String("op", op),
		slog.String("bidID", in.BidID.String()),
		slog.Int64("amount", int64(result.Amount)))
	return result, nil
}
