package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"swaphub/models"
)

// GormStore 是以 PostgreSQL serializable 交易實作的 Store
// 序列化失敗（SQLSTATE 40001/40P01）會在這一層集中重試
type GormStore struct {
	db      *gorm.DB
	options gormStoreOptions
}

type gormStoreOptions struct {
	logger     *slog.Logger
	maxRetries int
}

type GormStoreOption func(*gormStoreOptions)

// WithGormStoreLogger 設定日誌記錄器
func WithGormStoreLogger(logger *slog.Logger) GormStoreOption {
	return func(o *gormStoreOptions) {
		o.logger = logger
	}
}

// WithGormStoreMaxRetries 設定衝突重試額度
func WithGormStoreMaxRetries(n int) GormStoreOption {
	return func(o *gormStoreOptions) {
		o.maxRetries = n
	}
}

// NewGormStore 建立一個新的 GormStore 實例
func NewGormStore(db *gorm.DB, opts ...GormStoreOption) *GormStore {
	options := gormStoreOptions{
		logger:     slog.Default(),
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(&options)
	}
	options.logger = options.logger.With(slog.String("caller", "GormStore"))

	return &GormStore{
		db:      db,
		options: options,
	}
}

// RunTransaction 以 serializable 交易執行 fn，衝突時整個 fn 重新執行
func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	const op = "store.GormStore.RunTransaction"

	for attempt := 1; attempt <= s.options.maxRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTx{tx: tx})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		s.options.logger.Warn("transaction conflict, retrying",
			slog.Int("attempt", attempt), slog.Any("error", err))
	}
	return fmt.Errorf("%s: %w", op, ErrTxRetryExhausted)
}

// isSerializationFailure 判斷錯誤是否為可重試的序列化失敗
// 40001: serialization_failure, 40P01: deadlock_detected
func isSerializationFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "40P01")
}

// gormTx 在單一 gorm 交易上實作型別化的 Tx 操作
type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "store.gormTx.GetUser"
	var user models.User
	if result := t.tx.WithContext(ctx).First(&user, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &user, nil
}

func (t *gormTx) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	const op = "store.gormTx.GetItem"
	var item models.Item
	if result := t.tx.WithContext(ctx).First(&item, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &item, nil
}

func (t *gormTx) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	const op = "store.gormTx.GetBid"
	var bid models.Bid
	if result := t.tx.WithContext(ctx).First(&bid, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &bid, nil
}

func (t *gormTx) GetSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error) {
	const op = "store.gormTx.GetSwapOffer"
	var offer models.SwapOffer
	if result := t.tx.WithContext(ctx).First(&offer, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &offer, nil
}

func (t *gormTx) FindGeneralThread(ctx context.Context, fromUserID, toUserID uuid.UUID) (*models.SwapOffer, error) {
	const op = "store.gormTx.FindGeneralThread"
	var offer models.SwapOffer
	result := t.tx.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", fromUserID, toUserID, models.SwapOfferStatusGeneral).
		First(&offer)
	if result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &offer, nil
}

func (t *gormTx) SaveUser(ctx context.Context, user *models.User) error {
	const op = "store.gormTx.SaveUser"
	if result := t.tx.WithContext(ctx).Save(user); result.Error != nil {
		return fmt.Errorf("%s: failed to save user: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) SaveItem(ctx context.Context, item *models.Item) error {
	const op = "store.gormTx.SaveItem"
	if result := t.tx.WithContext(ctx).Save(item); result.Error != nil {
		return fmt.Errorf("%s: failed to save item: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) SaveSwapOffer(ctx context.Context, offer *models.SwapOffer) error {
	const op = "store.gormTx.SaveSwapOffer"
	if result := t.tx.WithContext(ctx).Save(offer); result.Error != nil {
		return fmt.Errorf("%s: failed to save swap offer: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) CreateItem(ctx context.Context, item *models.Item) error {
	const op = "store.gormTx.CreateItem"
	if result := t.tx.WithContext(ctx).Create(item); result.Error != nil {
		return fmt.Errorf("%s: failed to create item: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) CreateBid(ctx context.Context, bid *models.Bid) error {
	const op = "store.gormTx.CreateBid"
	if result := t.tx.WithContext(ctx).Create(bid); result.Error != nil {
		return fmt.Errorf("%s: failed to create bid: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) CreateSwapOffer(ctx context.Context, offer *models.SwapOffer) error {
	const op = "store.gormTx.CreateSwapOffer"
	if result := t.tx.WithContext(ctx).Create(offer); result.Error != nil {
		return fmt.Errorf("%s: failed to create swap offer: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) AppendLedger(ctx context.Context, record *models.LedgerRecord) error {
	const op = "store.gormTx.AppendLedger"
	if result := t.tx.WithContext(ctx).Create(record); result.Error != nil {
		return fmt.Errorf("%s: failed to append ledger record: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) CreateNotification(ctx context.Context, notification *models.Notification) error {
	const op = "store.gormTx.CreateNotification"
	if result := t.tx.WithContext(ctx).Create(notification); result.Error != nil {
		return fmt.Errorf("%s: failed to create notification: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) DeleteSwapOffer(ctx context.Context, id uuid.UUID) error {
	const op = "store.gormTx.DeleteSwapOffer"
	if result := t.tx.WithContext(ctx).Delete(&models.SwapOffer{}, "id = ?", id); result.Error != nil {
		return fmt.Errorf("%s: failed to delete swap offer: %w", op, result.Error)
	}
	return nil
}

func (t *gormTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "store.gormTx.DeleteItem"
	if result := t.tx.WithContext(ctx).Delete(&models.Item{}, "id = ?", id); result.Error != nil {
		return fmt.Errorf("%s: failed to delete item: %w", op, result.Error)
	}
	return nil
}

// wrapGormError 將 gorm 的 not found 轉換為 store 層的 ErrNotFound
func wrapGormError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// 以下為 Queries 的實作，不參與交易

func (s *GormStore) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "store.GormStore.FindUser"
	var user models.User
	if result := s.db.WithContext(ctx).First(&user, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &user, nil
}

func (s *GormStore) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	const op = "store.GormStore.FindItem"
	var item models.Item
	if result := s.db.WithContext(ctx).First(&item, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &item, nil
}

func (s *GormStore) FindSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error) {
	const op = "store.GormStore.FindSwapOffer"
	var offer models.SwapOffer
	if result := s.db.WithContext(ctx).First(&offer, "id = ?", id); result.Error != nil {
		return nil, wrapGormError(op, result.Error)
	}
	return &offer, nil
}

func (s *GormStore) ListItems(ctx context.Context) ([]models.Item, error) {
	const op = "store.GormStore.ListItems"
	var items []models.Item
	if result := s.db.WithContext(ctx).Order("created_at DESC").Find(&items); result.Error != nil {
		return nil, fmt.Errorf("%s: failed to list items: %w", op, result.Error)
	}
	return items, nil
}

func (s *GormStore) ListBidsByItem(ctx context.Context, itemID uuid.UUID) ([]models.Bid, error) {
	const op = "store.GormStore.ListBidsByItem"
	var bids []models.Bid
	result := s.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&bids)
	if result.Error != nil {
		return nil, fmt.Errorf("%s: failed to list bids: %w", op, result.Error)
	}
	return bids, nil
}

func (s *GormStore) ListSwapOffersByUser(ctx context.Context, userID uuid.UUID, incoming bool) ([]models.SwapOffer, error) {
	const op = "store.GormStore.ListSwapOffersByUser"
	column := "from_user_id"
	if incoming {
		column = "to_user_id"
	}
	var offers []models.SwapOffer
	result := s.db.WithContext(ctx).
		Where(column+" = ?", userID).
		Order("created_at DESC").
		Find(&offers)
	if result.Error != nil {
		return nil, fmt.Errorf("%s: failed to list swap offers: %w", op, result.Error)
	}
	return offers, nil
}

func (s *GormStore) ListLedgerByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerRecord, error) {
	const op = "store.GormStore.ListLedgerByUser"
	var records []models.LedgerRecord
	result := s.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("%s: failed to list ledger records: %w", op, result.Error)
	}
	return records, nil
}

func (s *GormStore) HasLedgerPair(ctx context.Context, buyerID, sellerID uuid.UUID) (bool, error) {
	const op = "store.GormStore.HasLedgerPair"
	var count int64
	result := s.db.WithContext(ctx).
		Model(&models.LedgerRecord{}).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ? AND type = ?)",
			buyerID, sellerID, sellerID, buyerID, models.LedgerTypeSwap).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("%s: failed to count ledger records: %w", op, result.Error)
	}
	return count > 0, nil
}

func (s *GormStore) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	const op = "store.GormStore.ListNotificationsByUser"
	var notifications []models.Notification
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("%s: failed to list notifications: %w", op, result.Error)
	}
	return notifications, nil
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	const op = "store.GormStore.MarkNotificationRead"
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("%s: failed to mark notification read: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

