package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// Wallet 負責點數購買
// 入帳和帳本紀錄在同一個交易內寫入
type Wallet struct {
	store    store.Store
	accounts *AccountManager
	ledger   *LedgerRecorder
	options  engineOptions
}

// NewWallet 建立一個新的 Wallet 實例
func NewWallet(s store.Store, opts ...Option) *Wallet {
	return &Wallet{
		store:    s,
		accounts: NewAccountManager(),
		ledger:   NewLedgerRecorder(),
		options:  newEngineOptions("Wallet", opts...),
	}
}

// BuyCredits 為使用者購買點數
func (w *Wallet) BuyCredits(ctx context.Context, userID uuid.UUID, amount uint32) (*models.User, error) {
	const op = "engine.Wallet.BuyCredits"

	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	var user *models.User
	err := w.store.RunTransaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = w.accounts.Credit(ctx, tx, userID, amount, CounterNone)
		if err != nil {
			return err
		}
		return w.ledger.RecordPurchase(ctx, tx, userID, amount)
	})
	if err != nil {
		return nil, err
	}

	w.options.logger.Info("Credits purchased",
		slog.String("op", op),
		slog.String("userID", userID.String()),
		slog.Int64("amount", int64(amount)))
	return user, nil
}
