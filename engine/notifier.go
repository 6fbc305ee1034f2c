package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"swaphub/adapters/store"
	"swaphub/models"
)

// Notifier 負責在觸發通知的交易內寫入通知紀錄
// 送達機制在引擎之外；引擎只保證紀錄和狀態變更一起提交
type Notifier struct{}

// NewNotifier 建立一個新的 Notifier 實例
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Emit 在呼叫端的交易內寫入一筆通知
func (n *Notifier) Emit(ctx context.Context, tx store.Tx, notification *models.Notification) error {
	return tx.CreateNotification(ctx, notification)
}

// NotificationEvent 是交易提交後發佈到事件流的通知事件
// 以 msgpack 序列化，欄位需保持可匯出
type NotificationEvent struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
	Title          string
	Message        string
	Type           models.NotificationType
	Link           string
	CreatedAt      time.Time
}

// EventPublisher 定義了通知事件的發佈介面
// 發佈只會發生在交易成功提交之後，交易本體內不能有任何外部副作用
type EventPublisher interface {
	Publish(event NotificationEvent) error
}

func eventFromNotification(n models.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		Link:           n.Link,
		CreatedAt:      n.CreatedAt,
	}
}

// publishEvents 將這次提交寫入的通知發佈到事件流
// 送達是 best-effort：紀錄已經持久化，發佈失敗只記錄日誌
func publishEvents(logger *slog.Logger, events EventPublisher, notices []models.Notification) {
	if events == nil {
		return
	}
	for _, n := range notices {
		if err := events.Publish(eventFromNotification(n)); err != nil {
			logger.Warn("Fail to publish notification event",
				slog.String("notificationID", n.ID.String()),
				slog.Any("error", err))
		}
	}
}

type engineOptions struct {
	logger *slog.Logger
	events EventPublisher
}

// Option 設定引擎的共用選項
type Option func(*engineOptions)

// WithLogger 設定日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithEventPublisher 設定交易提交後的通知事件發佈端
func WithEventPublisher(events EventPublisher) Option {
	return func(o *engineOptions) {
		o.events = events
	}
}

func newEngineOptions(caller string, opts ...Option) engineOptions {
	options := engineOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	options.logger = options.logger.With(slog.String("caller", caller))
	return options
}
