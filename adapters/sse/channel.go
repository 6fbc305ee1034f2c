package sse

import (
	"sync"

	"swaphub/engine"
)

// Channel 管理單一使用者的所有 SSE 訂閱者，
// 並將收到的通知事件廣播給每一個訂閱者
type Channel struct {
	subscribers map[<-chan engine.NotificationEvent]chan<- engine.NotificationEvent
	mu          sync.RWMutex
}

// NewChannel creates a new SSE channel.
func NewChannel() *Channel {
	return &Channel{
		subscribers: make(map[<-chan engine.NotificationEvent]chan<- engine.NotificationEvent),
	}
}

// Subscribe 建立一個新的通道，將其加入 subscribers，並回傳唯讀通道給呼叫者
func (c *Channel) Subscribe() <-chan engine.NotificationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan engine.NotificationEvent)
	c.subscribers[ch] = ch
	return ch
}

// Unsubscribe 從 subscribers 中移除指定的通道，並關閉該通道
func (c *Channel) Unsubscribe(ch <-chan engine.NotificationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if writeCh, exists := c.subscribers[ch]; exists {
		delete(c.subscribers, ch)
		close(writeCh)
	}
}

// UnsubscribeAll 關閉所有訂閱者的通道並清空訂閱清單
func (c *Channel) UnsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, writeCh := range c.subscribers {
		close(writeCh)
	}
	clear(c.subscribers)
}

// Broadcast 將事件廣播給所有仍在訂閱清單中的通道
func (c *Channel) Broadcast(event engine.NotificationEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, writeCh := range c.subscribers {
		writeCh <- event
	}
}

// IsIdle 判斷 subscribers 是否為空
func (c *Channel) IsIdle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers) == 0
}
