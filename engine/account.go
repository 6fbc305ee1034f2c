package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// Counter 指定 Credit 入帳時要一併累加的成交計數器
type Counter int

const (
	CounterNone Counter = iota
	CounterItemsSold
	CounterItemsSwapped
)

// AccountManager 負責點數餘額與成交計數的原子異動
// 所有操作都在呼叫端的交易內執行，不會自行提交，
// 單筆交換的扣款和入帳必須由呼叫端放進同一個交易
type AccountManager struct{}

// NewAccountManager 建立一個新的 AccountManager 實例
func NewAccountManager() *AccountManager {
	return &AccountManager{}
}

// Debit 扣款，餘額不足時回傳 ErrInsufficientFunds
func (m *AccountManager) Debit(ctx context.Context, tx store.Tx, userID uuid.UUID, amount uint32) (*models.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if user.Credits < amount {
		return nil, fmt.Errorf("%w: balance is %d", ErrInsufficientFunds, user.Credits)
	}
	user.Credits -= amount
	if err := tx.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Credit 入帳，並視 counter 累加對應的成交計數
func (m *AccountManager) Credit(ctx context.Context, tx store.Tx, userID uuid.UUID, amount uint32, counter Counter) (*models.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.Credits += amount
	switch counter {
	case CounterItemsSold:
		user.ItemsSold++
	case CounterItemsSwapped:
		user.ItemsSwapped++
	}
	if err := tx.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
