package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// SwapEngine 負責以物易物提案的完整生命週期
// 提案建立、回應、一般詢問和刪除都是對 store 的單一原子交易
type SwapEngine struct {
	store     store.Store
	accounts  *AccountManager
	lifecycle *ItemLifecycle
	ledger    *LedgerRecorder
	notifier  *Notifier
	options   engineOptions
}

// NewSwapEngine 建立一個新的 SwapEngine 實例
func NewSwapEngine(s store.Store, opts ...Option) *SwapEngine {
	return &SwapEngine{
		store:     s,
		accounts:  NewAccountManager(),
		lifecycle: NewItemLifecycle(),
		ledger:    NewLedgerRecorder(),
		notifier:  NewNotifier(),
		options:   newEngineOptions("SwapEngine", opts...),
	}
}

// CreateOfferInput 是 CreateOffer 的輸入
type CreateOfferInput struct {
	FromUserID      uuid.UUID
	RequestedItemID uuid.UUID
	OfferedItemID   uuid.UUID
}

// CreateOffer 建立一筆針對商品的交換提案
// 兩件商品都必須是 ACTIVE，且被請求的商品不能是提案者自己的
func (e *SwapEngine) CreateOffer(ctx context.Context, in CreateOfferInput) (*models.SwapOffer, error) {
	const op = "engine.SwapEngine.CreateOffer"

	if in.FromUserID == uuid.Nil || in.RequestedItemID == uuid.Nil || in.OfferedItemID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user or item", ErrInvalidInput)
	}

	var offer *models.SwapOffer
	var notices []models.Notification
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		notices = notices[:0]

		from, err := tx.GetUser(ctx, in.FromUserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		requested, err := tx.GetItem(ctx, in.RequestedItemID)
		if err != nil {
			return notFound(err, ErrItemNotFound)
		}
		offered, err := tx.GetItem(ctx, in.OfferedItemID)
		if err != nil {
			return notFound(err, ErrItemNotFound)
		}
		if requested.OwnerID == in.FromUserID {
			return ErrSelfSwap
		}
		if offered.OwnerID != in.FromUserID {
			return fmt.Errorf("%w: offered item is not yours", ErrInvalidInput)
		}
		if requested.Status != models.ItemStatusActive || offered.Status != models.ItemStatusActive {
			return ErrItemsUnavailable
		}
		to, err := tx.GetUser(ctx, requested.OwnerID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}

		offer = &models.SwapOffer{
			RequestedItemID:    &requested.ID,
			RequestedItemTitle: requested.Title,
			OfferedItemID:      &offered.ID,
			OfferedItemTitle:   offered.Title,
			FromUserID:         from.ID,
			FromUserName:       from.Username,
			ToUserID:           to.ID,
			ToUserName:         to.Username,
			Status:             models.SwapOfferStatusPending,
		}
		if err := tx.CreateSwapOffer(ctx, offer); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  to.ID,
			Title:   "New Swap Offer",
			Message: fmt.Sprintf("%s wants to trade %q for your %q.", from.Username, offered.Title, requested.Title),
			Type:    models.NotificationTypeSwapOffer,
			Link:    "/dashboard",
		}
		if err := e.notifier.Emit(ctx, tx, notification); err != nil {
			return err
		}
		notices = append(notices, *notification)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(e.options.logger, e.options.events, notices)
	e.options.logger.Info("Swap offer created",
		slog.String("op", op),
		slog.String("offerID", offer.ID.String()),
		slog.String("fromUserID", in.FromUserID.String()))
	return offer, nil
}

// RespondInput 是 Respond 的輸入
type RespondInput struct {
	OfferID uuid.UUID
	Accept  bool
}

// RespondResult 是 Respond 成功後的結果
type RespondResult struct {
	Status models.SwapOfferStatus
}

// Respond 接受或拒絕一筆交換提案
// 提案必須仍是 PENDING，否則回傳 ErrAlreadyResolved——兩個併發的回應
// 恰好只有一個會生效。接受時兩件商品在同一個交易內一起成交，
// 任一件已經不是 ACTIVE 就以 ErrAlreadyResolved 整筆中止、提案維持 PENDING
func (e *SwapEngine) Respond(ctx context.Context, in RespondInput) (RespondResult, error) {
	const op = "engine.SwapEngine.Respond"

	if in.OfferID == uuid.Nil {
		return RespondResult{}, fmt.Errorf("%w: missing offer", ErrInvalidInput)
	}

	var result RespondResult
	var notices []models.Notification
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		notices = notices[:0]

		offer, err := tx.GetSwapOffer(ctx, in.OfferID)
		if err != nil {
			return notFound(err, ErrOfferNotFound)
		}
		if offer.Status != models.SwapOfferStatusPending {
			return ErrAlreadyResolved
		}

		if !in.Accept {
			offer.Status = models.SwapOfferStatusRejected
			if err := tx.SaveSwapOffer(ctx, offer); err != nil {
				return err
			}
			notification := &models.Notification{
				UserID:  offer.FromUserID,
				Title:   "Swap Declined",
				Message: fmt.Sprintf("Your offer for %q was declined.", offer.RequestedItemTitle),
				Type:    models.NotificationTypeSwapRejected,
				Link:    "/dashboard",
			}
			if err := e.notifier.Emit(ctx, tx, notification); err != nil {
				return err
			}
			notices = append(notices, *notification)
			result = RespondResult{Status: models.SwapOfferStatusRejected}
			return nil
		}

		if offer.RequestedItemID == nil || offer.OfferedItemID == nil {
			return fmt.Errorf("%w: offer has no items", ErrInvalidInput)
		}
		if _, _, err := e.lifecycle.CompleteSwap(ctx, tx, *offer.RequestedItemID, *offer.OfferedItemID); err != nil {
			return err
		}
		if _, err := e.accounts.Credit(ctx, tx, offer.FromUserID, 0, CounterItemsSwapped); err != nil {
			return err
		}
		if _, err := e.accounts.Credit(ctx, tx, offer.ToUserID, 0, CounterItemsSwapped); err != nil {
			return err
		}
		offer.Status = models.SwapOfferStatusAccepted
		if err := tx.SaveSwapOffer(ctx, offer); err != nil {
			return err
		}
		if err := e.ledger.RecordSwap(ctx, tx, offer); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  offer.FromUserID,
			Title:   "Swap Accepted!",
			Message: fmt.Sprintf("Your offer for %q has been accepted.", offer.RequestedItemTitle),
			Type:    models.NotificationTypeSwapAccepted,
			Link:    "/dashboard",
		}
		if err := e.notifier.Emit(ctx, tx, notification); err != nil {
			return err
		}
		notices = append(notices, *notification)
		result = RespondResult{Status: models.SwapOfferStatusAccepted}
		return nil
	})
	if err != nil {
		return RespondResult{}, err
	}

	publishEvents(e.options.logger, e.options.events, notices)
	e.options.logger.Info("Swap offer resolved",
		slog.String("op", op),
		slog.String("offerID", in.OfferID.String()),
		slog.String("status", string(result.Status)))
	return result, nil
}

// CreateGeneralInquiryInput 是 CreateGeneralInquiry 的輸入
type CreateGeneralInquiryInput struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
}

// CreateGeneralInquiry 建立（或取回既有的）兩個使用者之間的一般詢問串
// 冪等：同一對使用者重複呼叫永遠回傳同一筆 GENERAL 提案，不寄送通知
func (e *SwapEngine) CreateGeneralInquiry(ctx context.Context, in CreateGeneralInquiryInput) (*models.SwapOffer, error) {
	const op = "engine.SwapEngine.CreateGeneralInquiry"

	if in.FromUserID == uuid.Nil || in.ToUserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidInput)
	}
	if in.FromUserID == in.ToUserID {
		return nil, ErrSelfSwap
	}

	var offer *models.SwapOffer
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		existing, err := tx.FindGeneralThread(ctx, in.FromUserID, in.ToUserID)
		if err == nil {
			offer = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		from, err := tx.GetUser(ctx, in.FromUserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		to, err := tx.GetUser(ctx, in.ToUserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		offer = &models.SwapOffer{
			RequestedItemTitle: "General Inquiry",
			OfferedItemTitle:   "Inquiry",
			FromUserID:         from.ID,
			FromUserName:       from.Username,
			ToUserID:           to.ID,
			ToUserName:         to.Username,
			Status:             models.SwapOfferStatusGeneral,
		}
		return tx.CreateSwapOffer(ctx, offer)
	})
	if err != nil {
		return nil, err
	}

	e.options.logger.Info("General inquiry thread resolved",
		slog.String("op", op),
		slog.String("offerID", offer.ID.String()))
	return offer, nil
}

// DeleteOfferInput 是 DeleteOffer 的輸入
type DeleteOfferInput struct {
	OfferID uuid.UUID
	UserID  uuid.UUID
}

// DeleteOffer 刪除一筆交換提案
// 只有提案的任一方可以刪除；已接受的提案是歷史紀錄，不可刪除
func (e *SwapEngine) DeleteOffer(ctx context.Context, in DeleteOfferInput) error {
	const op = "engine.SwapEngine.DeleteOffer"

	if in.OfferID == uuid.Nil || in.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing offer or user", ErrInvalidInput)
	}

	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		offer, err := tx.GetSwapOffer(ctx, in.OfferID)
		if err != nil {
			return notFound(err, ErrOfferNotFound)
		}
		if offer.FromUserID != in.UserID && offer.ToUserID != in.UserID {
			return fmt.Errorf("%w: offer does not involve you", ErrInvalidInput)
		}
		if offer.Status == models.SwapOfferStatusAccepted {
			return ErrAlreadyResolved
		}
		return tx.DeleteSwapOffer(ctx, in.OfferID)
	})
	if err != nil {
		return err
	}

	e.options.logger.Info("Swap offer deleted",
		slog.String("op", op),
		slog.String("offerID", in.OfferID.String()))
	return nil
}
