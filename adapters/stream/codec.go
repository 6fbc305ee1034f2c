package stream

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"swaphub/engine"
)

// EncodeEvent 將通知事件序列化為 stream 訊息
// msgpack 序列化後以 base64 編碼，封裝在單一 data 欄位
func EncodeEvent(event engine.NotificationEvent) (map[string]any, error) {
	bytes, err := msgpack.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}
	return map[string]any{
		"data": base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// DecodeEvent 將 stream 訊息還原為通知事件
func DecodeEvent(message map[string]any) (engine.NotificationEvent, error) {
	var event engine.NotificationEvent

	dataStr, ok := message["data"].(string)
	if !ok {
		return event, ErrMissingData
	}
	bytes, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return event, fmt.Errorf("base64 decode error: %w", err)
	}
	if err := msgpack.Unmarshal(bytes, &event); err != nil {
		return event, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	// msgpack 解碼出來的時間帶當地時區，統一轉回 UTC
	event.CreatedAt = event.CreatedAt.UTC()
	return event, nil
}
