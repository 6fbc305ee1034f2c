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

func TestPlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("successful bid updates price and notifies owner", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		bidder := seedUser(t, s, "bidder", 0) // 出價不需要任何點數
		item := seedItem(t, s, seller, "Vintage Camera", 50)

		events := &capturePublisher{}
		engine := NewBidEngine(s, WithEventPublisher(events))

		result, err := engine.PlaceBid(ctx, PlaceBidInput{
			ItemID:   item.ID,
			BidderID: bidder.ID,
			Amount:   60,
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(60), result.NewPrice)
		assert.NotEqual(t, uuid.Nil, result.BidID)

		updated, err := s.FindItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(60), updated.Price)
		require.NotNil(t, updated.HighestBidderID)
		assert.Equal(t, bidder.ID, *updated.HighestBidderID)

		bids, err := s.ListBidsByItem(ctx, item.ID)
		require.NoError(t, err)
		require.Len(t, bids, 1)
		assert.Equal(t, "bidder", bids[0].BidderName)
		assert.Equal(t, uint32(60), bids[0].Amount)

		notifications, err := s.ListNotificationsByUser(ctx, seller.ID)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationTypeNewBid, notifications[0].Type)

		published := events.Events()
		require.Len(t, published, 1)
		assert.Equal(t, seller.ID, published[0].UserID)
	})

	t.Run("bid at or below current price is rejected", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		bidder := seedUser(t, s, "bidder", 100)
		item := seedItem(t, s, seller, "Lamp", 50)

		engine := NewBidEngine(s)
		_, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 50})
		assert.ErrorIs(t, err, ErrBidTooLow)

		_, err = engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 30})
		assert.ErrorIs(t, err, ErrBidTooLow)

		// 價格沒有被任何失敗的出價改動
		updated, err := s.FindItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(50), updated.Price)
	})

	t.Run("owner cannot bid on own item", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 100)
		item := seedItem(t, s, seller, "Lamp", 10)

		engine := NewBidEngine(s)
		_, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: seller.ID, Amount: 20})
		assert.ErrorIs(t, err, ErrSelfBid)
	})

	t.Run("swapped item rejects new bids", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		bidder := seedUser(t, s, "bidder", 100)
		item := seedItem(t, s, seller, "Lamp", 10)

		require.NoError(t, s.RunTransaction(ctx, func(tx store.Tx) error {
			stored, err := tx.GetItem(ctx, item.ID)
			if err != nil {
				return err
			}
			stored.Status = models.ItemStatusSwapped
			return tx.SaveItem(ctx, stored)
		}))

		engine := NewBidEngine(s)
		_, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 20})
		assert.ErrorIs(t, err, ErrNotAvailable)
	})

	t.Run("input validation", func(t *testing.T) {
		s := store.NewMemoryStore()
		engine := NewBidEngine(s)

		_, err := engine.PlaceBid(ctx, PlaceBidInput{BidderID: uuid.New(), Amount: 10})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = engine.PlaceBid(ctx, PlaceBidInput{ItemID: uuid.New(), Amount: 10})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = engine.PlaceBid(ctx, PlaceBidInput{ItemID: uuid.New(), BidderID: uuid.New(), Amount: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown entities", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		item := seedItem(t, s, seller, "Lamp", 10)
		engine := NewBidEngine(s)

		_, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: uuid.New(), Amount: 20})
		assert.ErrorIs(t, err, ErrUserNotFound)

		bidder := seedUser(t, s, "bidder", 0)
		_, err = engine.PlaceBid(ctx, PlaceBidInput{ItemID: uuid.New(), BidderID: bidder.ID, Amount: 20})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestAcceptBid(t *testing.T) {
	ctx := context.Background()

	t.Run("successful acceptance settles the sale atomically", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 10)
		bidder := seedUser(t, s, "bidder", 100)
		item := seedItem(t, s, seller, "Vintage Camera", 50)

		events := &capturePublisher{}
		engine := NewBidEngine(s, WithEventPublisher(events))

		placed, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 60})
		require.NoError(t, err)

		before := totalCredits(t, s, seller.ID, bidder.ID)
		result, err := engine.AcceptBid(ctx, AcceptBidInput{BidID: placed.BidID})
		require.NoError(t, err)
		assert.Equal(t, "Vintage Camera", result.ItemTitle)
		assert.Equal(t, uint32(60), result.Amount)

		// 買家扣款、賣家入帳且成交計數增加，總點數不變
		buyer, err := s.FindUser(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(40), buyer.Credits)
		owner, err := s.FindUser(ctx, seller.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(70), owner.Credits)
		assert.Equal(t, uint32(1), owner.ItemsSold)
		assert.Equal(t, before, totalCredits(t, s, seller.ID, bidder.ID))

		// 商品成交且帳本留下紀錄
		sold, err := s.FindItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusSwapped, sold.Status)

		records, err := s.ListLedgerByUser(ctx, bidder.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.LedgerTypeBidWin, records[0].Type)
		assert.Equal(t, uint32(60), records[0].Credits)

		notifications, err := s.ListNotificationsByUser(ctx, bidder.ID)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationTypeBidAccepted, notifications[0].Type)
	})

	t.Run("balance is checked at acceptance, not at placement", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		bidder := seedUser(t, s, "bidder", 0)
		item := seedItem(t, s, seller, "Lamp", 50)

		engine := NewBidEngine(s)
		// 沒有點數也可以出價
		placed, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 60})
		require.NoError(t, err)

		// 接受時餘額不足，整筆交易中止
		_, err = engine.AcceptBid(ctx, AcceptBidInput{BidID: placed.BidID})
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		// 商品維持 ACTIVE，沒有任何一半的寫入
		stored, err := s.FindItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusActive, stored.Status)
		records, err := s.ListLedgerByUser(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Empty(t, records)

		// 補充點數後同一筆出價可以被接受
		wallet := NewWallet(s)
		_, err = wallet.BuyCredits(ctx, bidder.ID, 100)
		require.NoError(t, err)
		_, err = engine.AcceptBid(ctx, AcceptBidInput{BidID: placed.BidID})
		require.NoError(t, err)
	})

	t.Run("accepting a bid on a resolved item fails", func(t *testing.T) {
		s := store.NewMemoryStore()
		seller := seedUser(t, s, "seller", 0)
		bidder := seedUser(t, s, "bidder", 200)
		item := seedItem(t, s, seller, "Lamp", 10)

		engine := NewBidEngine(s)
		first, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 20})
		require.NoError(t, err)
		second, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bidder.ID, Amount: 30})
		require.NoError(t, err)

		_, err = engine.AcceptBid(ctx, AcceptBidInput{BidID: second.BidID})
		require.NoError(t, err)
		_, err = engine.AcceptBid(ctx, AcceptBidInput{BidID: first.BidID})
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("unknown bid", func(t *testing.T) {
		s := store.NewMemoryStore()
		engine := NewBidEngine(s)
		_, err := engine.AcceptBid(ctx, AcceptBidInput{BidID: uuid.New()})
		assert.ErrorIs(t, err, ErrBidNotFound)
	})
}

// 兩個併發的接受操作恰好只有一個成功，買家只被扣款一次
func TestAcceptBid_ConcurrentAcceptance(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seller := seedUser(t, s, "seller", 0)
	alice := seedUser(t, s, "alice", 100)
	bob := seedUser(t, s, "bob", 100)
	item := seedItem(t, s, seller, "Lamp", 10)

	engine := NewBidEngine(s)
	bidA, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: alice.ID, Amount: 20})
	require.NoError(t, err)
	bidB, err := engine.PlaceBid(ctx, PlaceBidInput{ItemID: item.ID, BidderID: bob.ID, Amount: 30})
	require.NoError(t, err)

	before := totalCredits(t, s, seller.ID, alice.ID, bob.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bidID := range []uuid.UUID{bidA.BidID, bidB.BidID} {
		wg.Add(1)
		go func(i int, bidID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = engine.AcceptBid(ctx, AcceptBidInput{BidID: bidID})
		}(i, bidID)
	}
	wg.Wait()

	var succeeded, resolved int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrAlreadyResolved)
			resolved++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, resolved)

	// 商品成交一次、帳本只有一筆、總點數不變
	sold, err := s.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusSwapped, sold.Status)
	records, err := s.ListLedgerByUser(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, before, totalCredits(t, s, seller.ID, alice.ID, bob.ID))
}
