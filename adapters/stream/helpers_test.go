package stream

import (
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"swaphub/engine"
	"swaphub/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTest(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func testEvent() engine.NotificationEvent {
	return engine.NotificationEvent{
		NotificationID: uuid.MustParse("019101ba-0000-7000-8000-000000000001"),
		UserID:         uuid.MustParse("019101ba-0000-7000-8000-000000000002"),
		Title:          "Auction Won!",
		Message:        `You successfully acquired "Lamp" for 60 CR.`,
		Type:           models.NotificationTypeBidAccepted,
		Link:           "/dashboard",
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
