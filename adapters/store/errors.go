package store

import "errors"

var (
	// ErrNotFound 表示交易內讀取的實體不存在
	ErrNotFound = errors.New("document not found")
	// ErrTxRetryExhausted 表示交易因衝突重試額度用盡而放棄，
	// 沒有任何寫入生效，呼叫端可以從頭重試整個操作
	ErrTxRetryExhausted = errors.New("transaction retry budget exhausted")
)
