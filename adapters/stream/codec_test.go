package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	event := testEvent()

	message, err := EncodeEvent(event)
	require.NoError(t, err)
	require.Contains(t, message, "data")

	decoded, err := DecodeEvent(message)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
	// 時間欄位正規化為 UTC，深度比較才不會被時區指標干擾
	assert.Equal(t, time.UTC, decoded.CreatedAt.Location())
}

func TestDecodeEvent_InvalidMessage(t *testing.T) {
	_, err := DecodeEvent(map[string]any{})
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = DecodeEvent(map[string]any{"data": 42})
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = DecodeEvent(map[string]any{"data": "not-base64!!"})
	assert.Error(t, err)

	_, err = DecodeEvent(map[string]any{"data": "aGVsbG8="})
	assert.Error(t, err)
}
