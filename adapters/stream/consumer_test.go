package stream

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewConsumer(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		consumer, err := NewConsumer(client, "test-stream")
		require.NoError(t, err)
		assert.NotNil(t, consumer)
	})

	t.Run("nil client", func(t *testing.T) {
		consumer, err := NewConsumer(nil, "test-stream")
		assert.ErrorIs(t, err, ErrNilClient)
		assert.Nil(t, consumer)
	})

	t.Run("empty stream", func(t *testing.T) {
		client, _, cleanup := setupTest(t)
		defer cleanup()

		consumer, err := NewConsumer(client, "")
		assert.ErrorIs(t, err, ErrEmptyStream)
		assert.Nil(t, consumer)
	})
}

func TestConsumer_StartStop(t *testing.T) {
	t.Run("normal start and stop", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "$"},
			Count:   1,
			Block:   time.Second,
		}).SetErr(redis.Nil)

		consumer, err := NewConsumer(client, "test-stream")
		require.NoError(t, err)

		consumer.Start()
		time.Sleep(100 * time.Millisecond)
		consumer.Close()
	})

	t.Run("repeated start and close are no-ops", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "$"},
			Count:   1,
			Block:   time.Second,
		}).SetErr(redis.Nil)

		consumer, err := NewConsumer(client, "test-stream")
		require.NoError(t, err)

		consumer.Start()
		consumer.Start()
		time.Sleep(100 * time.Millisecond)
		consumer.Close()
		consumer.Close()
	})
}

func TestConsumer_Subscribe(t *testing.T) {
	t.Run("delivers decoded events downstream", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		event := testEvent()
		message, err := EncodeEvent(event)
		require.NoError(t, err)

		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "$"},
			Count:   1,
			Block:   time.Second,
		}).SetVal([]redis.XStream{
			{
				Stream: "test-stream",
				Messages: []redis.XMessage{
					{ID: "1234-0", Values: message},
				},
			},
		})

		consumer, err := NewConsumer(client, "test-stream")
		require.NoError(t, err)

		consumer.Start()
		defer consumer.Close()

		select {
		case received := <-consumer.Subscribe():
			assert.Equal(t, event, received)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("skips undecodable messages", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		event := testEvent()
		good, err := EncodeEvent(event)
		require.NoError(t, err)

		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "$"},
			Count:   1,
			Block:   time.Second,
		}).SetVal([]redis.XStream{
			{
				Stream: "test-stream",
				Messages: []redis.XMessage{
					{ID: "1234-0", Values: map[string]any{"data": "garbage"}},
				},
			},
		})
		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "1234-0"},
			Count:   1,
			Block:   time.Second,
		}).SetVal([]redis.XStream{
			{
				Stream: "test-stream",
				Messages: []redis.XMessage{
					{ID: "1234-1", Values: good},
				},
			},
		})

		consumer, err := NewConsumer(client, "test-stream")
		require.NoError(t, err)

		consumer.Start()
		defer consumer.Close()

		select {
		case received := <-consumer.Subscribe():
			assert.Equal(t, event, received)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})
}
