package stream

import "errors"

var (
	ErrClosed       = errors.New("stream is closed")
	ErrMissingData  = errors.New("data field not found or invalid type")
	ErrNilClient    = errors.New("redis client cannot be nil")
	ErrEmptyStream  = errors.New("stream cannot be empty")
)
