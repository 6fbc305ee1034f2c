package sse

import "swaphub/engine"

// Subscriber 定義了通知事件的上游來源
// 由 stream.Consumer 實作；測試時可以用簡單的 channel 包裝替代
type Subscriber interface {
	Subscribe() <-chan engine.NotificationEvent
}

// IChannel 定義了 SSE 頻道的介面
type IChannel interface {
	// Subscribe 建立一個新的訂閱並返回接收事件的通道
	Subscribe() <-chan engine.NotificationEvent
	// Unsubscribe 取消指定通道的訂閱
	Unsubscribe(ch <-chan engine.NotificationEvent)
	// UnsubscribeAll 取消所有訂閱
	UnsubscribeAll()
	// Broadcast 將事件廣播給所有訂閱者
	Broadcast(event engine.NotificationEvent)
	// IsIdle 檢查是否沒有訂閱者
	IsIdle() bool
}

// IConnectionManager 定義了 SSE 連線管理員的介面
type IConnectionManager interface {
	// Start 啟動 ConnectionManager，開始把上游事件廣播給訂閱者
	// 應在呼叫其他方法前先呼叫此方法
	Start()
	// Done 停止 ConnectionManager，釋放所有資源
	Done()
	// Subscribe 訂閱指定使用者的通知，返回接收事件的通道
	Subscribe(userID string) (<-chan engine.NotificationEvent, error)
	// Unsubscribe 取消訂閱
	Unsubscribe(userID string, ch <-chan engine.NotificationEvent)
}
