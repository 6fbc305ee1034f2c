package engine

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"swaphub/adapters/store"
	"swaphub/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedUser(t *testing.T, s *store.MemoryStore, username string, credits uint32) *models.User {
	t.Helper()
	user := &models.User{Username: username, Credits: credits}
	s.AddUser(user)
	return user
}

func seedItem(t *testing.T, s *store.MemoryStore, owner *models.User, title string, price uint32) *models.Item {
	t.Helper()
	item := &models.Item{
		OwnerID: owner.ID,
		Title:   title,
		Status:  models.ItemStatusActive,
		Price:   price,
	}
	err := s.RunTransaction(context.Background(), func(tx store.Tx) error {
		return tx.CreateItem(context.Background(), item)
	})
	require.NoError(t, err)
	return item
}

// capturePublisher 收集交易提交後發佈的通知事件
type capturePublisher struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (p *capturePublisher) Publish(event NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Events() []NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]NotificationEvent(nil), p.events...)
}

// totalCredits 計算所有使用者的點數總和，用於驗證轉帳不會憑空增減點數
func totalCredits(t *testing.T, s *store.MemoryStore, userIDs ...uuid.UUID) uint32 {
	t.Helper()
	var sum uint32
	for _, id := range userIDs {
		user, err := s.FindUser(context.Background(), id)
		require.NoError(t, err)
		sum += user.Credits
	}
	return sum
}
