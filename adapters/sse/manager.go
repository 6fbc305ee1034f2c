package sse

import (
	"context"
	"log/slog"
	"sync"

	"swaphub/engine"
)

// connectionManager 依使用者分流通知事件
// 上游事件來自 redis stream，頻道名稱就是事件的 UserID，
// 所以多個服務實例各自的訂閱者都收得到同一筆通知
type connectionManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.RWMutex   // 保護 active 和 channels 的讀寫
	wg     sync.WaitGroup // 用於等待廣播 goroutine 完成
	active bool

	upstream Subscriber
	channels map[string]*Channel
}

// NewConnectionManager 建立一個新的連線管理器
// upstream: 通知事件的上游來源，通常是 stream.Consumer
func NewConnectionManager(upstream Subscriber, logger *slog.Logger) IConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &connectionManager{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.With(slog.String("caller", "ConnectionManager")),
		upstream: upstream,
		channels: make(map[string]*Channel),
		active:   true,
	}
}

// Start 啟動連線管理器，開始把上游事件廣播給訂閱者
// 應在呼叫其他方法前先呼叫此方法
func (cm *connectionManager) Start() {
	events := cm.upstream.Subscribe()
	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for {
			select {
			case <-cm.ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				cm.mu.RLock()
				if channel, ok := cm.channels[event.UserID.String()]; ok {
					channel.Broadcast(event)
				}
				cm.mu.RUnlock()
			}
		}
	}()
}

// Done 停止連線管理器的運作
func (cm *connectionManager) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	cm.cancel()
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe 訂閱指定使用者的通知
// userID: 接收通知的使用者 ID
// 返回: 用於接收事件的唯讀通道，以及可能的錯誤
func (cm *connectionManager) Subscribe(userID string) (<-chan engine.NotificationEvent, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.active {
		return nil, context.Canceled
	}

	c, ok := cm.channels[userID]
	if !ok {
		c = NewChannel()
		cm.channels[userID] = c
	}
	return c.Subscribe(), nil
}

// Unsubscribe 取消訂閱指定使用者的通知
func (cm *connectionManager) Unsubscribe(userID string, ch <-chan engine.NotificationEvent) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[userID]
	if !ok {
		return
	}

	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, userID)
	}
}
