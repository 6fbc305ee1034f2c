package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/chanx"

	"swaphub/engine"
)

type producerOptions struct {
	logger     *slog.Logger
	bufferSize int
}

type ProducerOption func(*producerOptions)

// WithProducerLogger 設置日誌記錄器
func WithProducerLogger(logger *slog.Logger) ProducerOption {
	return func(o *producerOptions) {
		o.logger = logger
	}
}

// WithProducerBufferSize 設置緩衝大小
func WithProducerBufferSize(size int) ProducerOption {
	return func(o *producerOptions) {
		o.bufferSize = size
	}
}

// Producer 將通知事件非同步寫入 redis stream
// Publish 只把事件放進無界緩衝，實際的 XAdd 由背景 goroutine 執行，
// 所以引擎在交易提交後發佈事件不會被 redis 的延遲擋住
type Producer struct {
	client     *redis.Client
	stream     string
	upstream   *chanx.UnboundedChan[engine.NotificationEvent]
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex // 保護 closed 與 upstream，讓 Publish 和 Start/Close 可以併發呼叫
	closed     bool
	logger     *slog.Logger
	options    producerOptions
}

func NewProducer(client *redis.Client, stream string, opts ...ProducerOption) (*Producer, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if stream == "" {
		return nil, ErrEmptyStream
	}

	// 默認選項
	options := producerOptions{
		logger:     slog.Default(),
		bufferSize: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Producer{
		client:  client,
		stream:  stream,
		closed:  true,
		logger:  options.logger.With(slog.String("caller", "Producer"), slog.String("stream", stream)),
		options: options,
	}, nil
}

func (p *Producer) Start() {
	p.mu.Lock()
	if !p.closed {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.upstream = chanx.NewUnboundedChan[engine.NotificationEvent](ctx, p.options.bufferSize)
	p.cancelFunc = cancel
	p.closed = false
	p.mu.Unlock()
	p.logger.Info("starting notification producer")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.logger.Info("producer goroutine stopped")

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-p.upstream.Out:
				message, err := EncodeEvent(event)
				if err != nil {
					p.logger.Error("encode event error", slog.Any("error", err))
					continue
				}
				id, err := p.client.XAdd(ctx, &redis.XAddArgs{
					Stream: p.stream,
					Values: message,
				}).Result()
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					p.logger.Error("publish event error", slog.Any("error", err))
					continue
				}
				p.logger.Debug("event published", slog.String("messageId", id))
			}
		}
	}()
}

// Publish 實作 engine.EventPublisher
func (p *Producer) Publish(event engine.NotificationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publish event error: %w", ErrClosed)
	}
	p.upstream.In <- event
	return nil
}

func (p *Producer) Close() {
	// closed 翻轉後才取消 context，進行中的 Publish 持有讀鎖，
	// 會在緩衝還在消化時送完才放行關閉
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.logger.Info("closing notification producer")
	p.cancelFunc()
	p.wg.Wait()
	p.logger.Info("notification producer closed")
}
