package api

import (
	"fmt"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"swaphub/adapters/sse"
	"swaphub/adapters/store"
	"swaphub/adapters/stream"
	"swaphub/engine"
	"swaphub/models"
)

type ServerImpl struct {
	store       store.Store
	queries     store.Queries
	bids        *engine.BidEngine
	swaps       *engine.SwapEngine
	wallet      *engine.Wallet
	reviews     *engine.Reviews
	htmlChecker *bluemonday.Policy
	redisClient *redis.Client
	producer    *stream.Producer
	consumer    *stream.Consumer
	sseManager  sse.IConnectionManager
	db          *gorm.DB

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if config.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&models.User{},
			&models.Item{},
			&models.Bid{},
			&models.SwapOffer{},
			&models.LedgerRecord{},
			&models.Notification{},
		); err != nil {
			return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}
	gormStore := store.NewGormStore(db)

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化通知事件流
	producer, err := stream.NewProducer(redisClient, config.Redis.StreamKeys.Notification)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create producer, err=%w", op, err)
	}
	consumer, err := stream.NewConsumer(redisClient, config.Redis.StreamKeys.Notification)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create consumer, err=%w", op, err)
	}

	// 初始化SSE管理器
	sseManager := sse.NewConnectionManager(consumer, slog.Default())

	return &ServerImpl{
		store:       gormStore,
		queries:     gormStore,
		bids:        engine.NewBidEngine(gormStore, engine.WithEventPublisher(producer)),
		swaps:       engine.NewSwapEngine(gormStore, engine.WithEventPublisher(producer)),
		wallet:      engine.NewWallet(gormStore),
		reviews:     engine.NewReviews(gormStore),
		htmlChecker: bluemonday.UGCPolicy(),
		redisClient: redisClient,
		producer:    producer,
		consumer:    consumer,
		sseManager:  sseManager,
		db:          db,
		config:      config,
	}, nil
}

func (impl *ServerImpl) Start() {
	// 啟動producer
	impl.producer.Start()
	// 啟動consumer
	impl.consumer.Start()
	// 啟動sse connection manager
	impl.sseManager.Start()
}

func (impl *ServerImpl) Close() {
	// 關閉sse connection manager
	impl.sseManager.Done()
	// 關閉consumer
	impl.consumer.Close()
	// 關閉producer
	impl.producer.Close()
}
