package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaphub/adapters/store"
	"swaphub/models"
)

func TestBuyCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("successful purchase records a ledger entry", func(t *testing.T) {
		s := store.NewMemoryStore()
		alice := seedUser(t, s, "alice", 10)
		wallet := NewWallet(s)

		user, err := wallet.BuyCredits(ctx, alice.ID, 90)
		require.NoError(t, err)
		assert.Equal(t, uint32(100), user.Credits)

		records, err := s.ListLedgerByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.LedgerTypeCreditPurchase, records[0].Type)
		assert.Equal(t, uint32(90), records[0].Credits)
		assert.Nil(t, records[0].FromUserID)
		assert.Equal(t, alice.ID, records[0].ToUserID)
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		s := store.NewMemoryStore()
		alice := seedUser(t, s, "alice", 0)
		wallet := NewWallet(s)
		_, err := wallet.BuyCredits(ctx, alice.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := store.NewMemoryStore()
		wallet := NewWallet(s)
		_, err := wallet.BuyCredits(ctx, uuid.New(), 10)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("missing user id", func(t *testing.T) {
		s := store.NewMemoryStore()
		wallet := NewWallet(s)
		_, err := wallet.BuyCredits(ctx, uuid.Nil, 10)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// 併發購買不會遺失任何一筆入帳
func TestBuyCredits_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(store.WithMemoryStoreMaxRetries(20))
	alice := seedUser(t, s, "alice", 0)
	wallet := NewWallet(s)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = wallet.BuyCredits(ctx, alice.ID, 5)
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	user, err := s.FindUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(n*5), user.Credits)

	records, err := s.ListLedgerByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, records, n)
}
