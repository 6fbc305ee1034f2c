package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"swaphub/models"
)

type collection string

const (
	colUsers         collection = "users"
	colItems         collection = "items"
	colBids          collection = "bids"
	colSwapOffers    collection = "swapOffers"
	colLedger        collection = "ledger"
	colNotifications collection = "notifications"
)

// MemoryStore 是以樂觀並行控制實作的記憶體版 Store
// 每份文件帶有版本號，交易提交時驗證讀取集的版本，
// 有任何一份在讀取後被別人改過就放棄這次嘗試並重跑整個交易
// 用於測試以及不需要資料庫的開發環境
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[collection]map[uuid.UUID]any
	versions map[collection]map[uuid.UUID]uint64
	// GENERAL 對話串以 (from,to) 配對為單位的版本號，
	// 讓 FindGeneralThread 的「查無此串」也能參與衝突偵測
	pairVersions map[string]uint64

	options memoryStoreOptions
}

type memoryStoreOptions struct {
	logger     *slog.Logger
	maxRetries int
}

type MemoryStoreOption func(*memoryStoreOptions)

// WithMemoryStoreLogger 設定日誌記錄器
func WithMemoryStoreLogger(logger *slog.Logger) MemoryStoreOption {
	return func(o *memoryStoreOptions) {
		o.logger = logger
	}
}

// WithMemoryStoreMaxRetries 設定衝突重試額度
func WithMemoryStoreMaxRetries(n int) MemoryStoreOption {
	return func(o *memoryStoreOptions) {
		o.maxRetries = n
	}
}

// NewMemoryStore 建立一個新的 MemoryStore 實例
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	options := memoryStoreOptions{
		logger:     slog.Default(),
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(&options)
	}
	options.logger = options.logger.With(slog.String("caller", "MemoryStore"))

	docs := make(map[collection]map[uuid.UUID]any)
	versions := make(map[collection]map[uuid.UUID]uint64)
	for _, col := range []collection{colUsers, colItems, colBids, colSwapOffers, colLedger, colNotifications} {
		docs[col] = make(map[uuid.UUID]any)
		versions[col] = make(map[uuid.UUID]uint64)
	}

	return &MemoryStore{
		docs:         docs,
		versions:     versions,
		pairVersions: make(map[string]uint64),
		options:      options,
	}
}

// RunTransaction 執行 fn，提交時驗證讀取集，衝突則重跑 fn
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	const op = "store.MemoryStore.RunTransaction"

	for attempt := 1; attempt <= s.options.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		tx := newMemoryTx(s)
		if err := fn(tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
		s.options.logger.Debug("optimistic conflict, retrying",
			slog.Int("attempt", attempt))
	}
	return fmt.Errorf("%s: %w", op, ErrTxRetryExhausted)
}

// commit 驗證讀取集並套用寫入，成功回傳 true，偵測到衝突回傳 false
func (s *MemoryStore) commit(tx *memoryTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for col, reads := range tx.reads {
		for id, version := range reads {
			if s.versions[col][id] != version {
				return false
			}
		}
	}
	for key, version := range tx.pairReads {
		if s.pairVersions[key] != version {
			return false
		}
	}

	for _, w := range tx.writes {
		if w.doc == nil {
			// 刪除 GENERAL 串也要讓配對版本失效，
			// 否則併發的詢問會拿著剛被刪除的串提交
			if offer, ok := s.docs[w.col][w.id].(*models.SwapOffer); ok && offer.Status == models.SwapOfferStatusGeneral {
				s.pairVersions[pairKey(offer.FromUserID, offer.ToUserID)]++
			}
			delete(s.docs[w.col], w.id)
		} else {
			s.docs[w.col][w.id] = cloneDoc(w.doc)
		}
		s.versions[w.col][w.id]++
		if offer, ok := w.doc.(*models.SwapOffer); ok && offer.Status == models.SwapOfferStatusGeneral {
			s.pairVersions[pairKey(offer.FromUserID, offer.ToUserID)]++
		}
	}
	return true
}

// AddUser 直接寫入一個使用者，僅供測試與開發環境的資料初始化使用
func (s *MemoryStore) AddUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = newDocID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.docs[colUsers][user.ID] = cloneDoc(user)
	s.versions[colUsers][user.ID]++
}

func pairKey(fromUserID, toUserID uuid.UUID) string {
	return fromUserID.String() + "|" + toUserID.String()
}

// newDocID 產生一個新的 uuidv7，與資料庫端的預設值對齊
func newDocID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// cloneDoc 複製文件，避免提交後的狀態和交易內的指標互相干擾
func cloneDoc(doc any) any {
	switch d := doc.(type) {
	case *models.User:
		clone := *d
		return &clone
	case *models.Item:
		clone := *d
		if d.HighestBidderID != nil {
			id := *d.HighestBidderID
			clone.HighestBidderID = &id
		}
		clone.Images = append([]string(nil), d.Images...)
		clone.HighestBidder = nil
		return &clone
	case *models.Bid:
		clone := *d
		return &clone
	case *models.SwapOffer:
		clone := *d
		if d.RequestedItemID != nil {
			id := *d.RequestedItemID
			clone.RequestedItemID = &id
		}
		if d.OfferedItemID != nil {
			id := *d.OfferedItemID
			clone.OfferedItemID = &id
		}
		return &clone
	case *models.LedgerRecord:
		clone := *d
		if d.FromUserID != nil {
			id := *d.FromUserID
			clone.FromUserID = &id
		}
		if d.ItemID != nil {
			id := *d.ItemID
			clone.ItemID = &id
		}
		if d.OfferedItemID != nil {
			id := *d.OfferedItemID
			clone.OfferedItemID = &id
		}
		return &clone
	case *models.Notification:
		clone := *d
		return &clone
	}
	return doc
}

// memoryTx 緩衝單一交易的讀取集與寫入集
type memoryTx struct {
	store     *MemoryStore
	reads     map[collection]map[uuid.UUID]uint64
	pairReads map[string]uint64
	writes    []memoryWrite
}

// memoryWrite 代表一筆緩衝的寫入，doc 為 nil 表示刪除
type memoryWrite struct {
	col collection
	id  uuid.UUID
	doc any
}

func newMemoryTx(s *MemoryStore) *memoryTx {
	reads := make(map[collection]map[uuid.UUID]uint64)
	for col := range s.docs {
		reads[col] = make(map[uuid.UUID]uint64)
	}
	return &memoryTx{
		store:     s,
		reads:     reads,
		pairReads: make(map[string]uint64),
	}
}

// getDoc 讀取文件並記錄讀取時的版本；不存在的文件記錄版本 0，
// 這樣「讀不到，接著被別人建立」也會被當成衝突
func (t *memoryTx) getDoc(op string, col collection, id uuid.UUID) (any, error) {
	// 先讀自己緩衝的寫入
	for i := len(t.writes) - 1; i >= 0; i-- {
		if t.writes[i].col == col && t.writes[i].id == id {
			if t.writes[i].doc == nil {
				return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return cloneDoc(t.writes[i].doc), nil
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, seen := t.reads[col][id]; !seen {
		t.reads[col][id] = t.store.versions[col][id]
	}
	doc, ok := t.store.docs[col][id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return cloneDoc(doc), nil
}

func (t *memoryTx) putDoc(col collection, id uuid.UUID, doc any) {
	t.writes = append(t.writes, memoryWrite{col: col, id: id, doc: cloneDoc(doc)})
}

func (t *memoryTx) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	doc, err := t.getDoc("store.memoryTx.GetUser", colUsers, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.User), nil
}

func (t *memoryTx) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	doc, err := t.getDoc("store.memoryTx.GetItem", colItems, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.Item), nil
}

func (t *memoryTx) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	doc, err := t.getDoc("store.memoryTx.GetBid", colBids, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.Bid), nil
}

func (t *memoryTx) GetSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error) {
	doc, err := t.getDoc("store.memoryTx.GetSwapOffer", colSwapOffers, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.SwapOffer), nil
}

func (t *memoryTx) FindGeneralThread(ctx context.Context, fromUserID, toUserID uuid.UUID) (*models.SwapOffer, error) {
	const op = "store.memoryTx.FindGeneralThread"

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	key := pairKey(fromUserID, toUserID)
	if _, seen := t.pairReads[key]; !seen {
		t.pairReads[key] = t.store.pairVersions[key]
	}
	for _, doc := range t.store.docs[colSwapOffers] {
		offer := doc.(*models.SwapOffer)
		if offer.Status == models.SwapOfferStatusGeneral &&
			offer.FromUserID == fromUserID && offer.ToUserID == toUserID {
			return cloneDoc(offer).(*models.SwapOffer), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
}

func (t *memoryTx) SaveUser(ctx context.Context, user *models.User) error {
	t.putDoc(colUsers, user.ID, user)
	return nil
}

func (t *memoryTx) SaveItem(ctx context.Context, item *models.Item) error {
	t.putDoc(colItems, item.ID, item)
	return nil
}

func (t *memoryTx) SaveSwapOffer(ctx context.Context, offer *models.SwapOffer) error {
	t.putDoc(colSwapOffers, offer.ID, offer)
	return nil
}

func (t *memoryTx) CreateItem(ctx context.Context, item *models.Item) error {
	stampNew(&item.ID, &item.CreatedAt)
	t.putDoc(colItems, item.ID, item)
	return nil
}

func (t *memoryTx) CreateBid(ctx context.Context, bid *models.Bid) error {
	stampNew(&bid.ID, &bid.CreatedAt)
	t.putDoc(colBids, bid.ID, bid)
	return nil
}

func (t *memoryTx) CreateSwapOffer(ctx context.Context, offer *models.SwapOffer) error {
	stampNew(&offer.ID, &offer.CreatedAt)
	t.putDoc(colSwapOffers, offer.ID, offer)
	return nil
}

func (t *memoryTx) AppendLedger(ctx context.Context, record *models.LedgerRecord) error {
	stampNew(&record.ID, &record.CreatedAt)
	t.putDoc(colLedger, record.ID, record)
	return nil
}

func (t *memoryTx) CreateNotification(ctx context.Context, notification *models.Notification) error {
	stampNew(&notification.ID, &notification.CreatedAt)
	t.putDoc(colNotifications, notification.ID, notification)
	return nil
}

func (t *memoryTx) DeleteSwapOffer(ctx context.Context, id uuid.UUID) error {
	t.writes = append(t.writes, memoryWrite{col: colSwapOffers, id: id, doc: nil})
	return nil
}

func (t *memoryTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	t.writes = append(t.writes, memoryWrite{col: colItems, id: id, doc: nil})
	return nil
}

// stampNew 補上資料庫端預設值會處理的欄位
func stampNew(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = newDocID()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
}

// 以下為 Queries 的實作，直接讀取已提交的狀態

func (s *MemoryStore) findDoc(op string, col collection, id uuid.UUID) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[col][id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	doc, err := s.findDoc("store.MemoryStore.FindUser", colUsers, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.User), nil
}

func (s *MemoryStore) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	doc, err := s.findDoc("store.MemoryStore.FindItem", colItems, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.Item), nil
}

func (s *MemoryStore) FindSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error) {
	doc, err := s.findDoc("store.MemoryStore.FindSwapOffer", colSwapOffers, id)
	if err != nil {
		return nil, err
	}
	return doc.(*models.SwapOffer), nil
}

func (s *MemoryStore) ListItems(ctx context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.Item, 0, len(s.docs[colItems]))
	for _, doc := range s.docs[colItems] {
		items = append(items, *cloneDoc(doc).(*models.Item))
	}
	sortByCreatedAtDesc(items, func(i models.Item) time.Time { return i.CreatedAt })
	return items, nil
}

func (s *MemoryStore) ListBidsByItem(ctx context.Context, itemID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bids []models.Bid
	for _, doc := range s.docs[colBids] {
		bid := doc.(*models.Bid)
		if bid.ItemID == itemID {
			bids = append(bids, *cloneDoc(bid).(*models.Bid))
		}
	}
	sortByCreatedAtDesc(bids, func(b models.Bid) time.Time { return b.CreatedAt })
	return bids, nil
}

func (s *MemoryStore) ListSwapOffersByUser(ctx context.Context, userID uuid.UUID, incoming bool) ([]models.SwapOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var offers []models.SwapOffer
	for _, doc := range s.docs[colSwapOffers] {
		offer := doc.(*models.SwapOffer)
		if (incoming && offer.ToUserID == userID) || (!incoming && offer.FromUserID == userID) {
			offers = append(offers, *cloneDoc(offer).(*models.SwapOffer))
		}
	}
	sortByCreatedAtDesc(offers, func(o models.SwapOffer) time.Time { return o.CreatedAt })
	return offers, nil
}

func (s *MemoryStore) ListLedgerByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []models.LedgerRecord
	for _, doc := range s.docs[colLedger] {
		record := doc.(*models.LedgerRecord)
		if (record.FromUserID != nil && *record.FromUserID == userID) || record.ToUserID == userID {
			records = append(records, *cloneDoc(record).(*models.LedgerRecord))
		}
	}
	sortByCreatedAtDesc(records, func(r models.LedgerRecord) time.Time { return r.CreatedAt })
	return records, nil
}

func (s *MemoryStore) HasLedgerPair(ctx context.Context, buyerID, sellerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs[colLedger] {
		record := doc.(*models.LedgerRecord)
		if record.FromUserID == nil {
			continue
		}
		if *record.FromUserID == buyerID && record.ToUserID == sellerID {
			return true, nil
		}
		if *record.FromUserID == sellerID && record.ToUserID == buyerID && record.Type == models.LedgerTypeSwap {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notifications []models.Notification
	for _, doc := range s.docs[colNotifications] {
		notification := doc.(*models.Notification)
		if notification.UserID == userID {
			notifications = append(notifications, *cloneDoc(notification).(*models.Notification))
		}
	}
	sortByCreatedAtDesc(notifications, func(n models.Notification) time.Time { return n.CreatedAt })
	return notifications, nil
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	const op = "store.MemoryStore.MarkNotificationRead"
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[colNotifications][id]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	notification := cloneDoc(doc).(*models.Notification)
	notification.IsRead = true
	s.docs[colNotifications][id] = notification
	s.versions[colNotifications][id]++
	return nil
}


func sortByCreatedAtDesc[T any](values []T, createdAt func(T) time.Time) {
	sort.SliceStable(values, func(i, j int) bool {
		return createdAt(values[i]).After(createdAt(values[j]))
	})
}
