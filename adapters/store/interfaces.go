package store

import (
	"context"

	"github.com/google/uuid"

	"swaphub/models"
)

// Tx 定義了交易範圍內的型別化讀寫操作
// 所有讀取都是交易開始後的最新狀態，所有寫入只有在交易提交後才可見
type Tx interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	GetSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error)
	// FindGeneralThread 查詢兩個使用者之間既有的 GENERAL 對話串，
	// 找不到時回傳 ErrNotFound
	FindGeneralThread(ctx context.Context, fromUserID, toUserID uuid.UUID) (*models.SwapOffer, error)

	SaveUser(ctx context.Context, user *models.User) error
	SaveItem(ctx context.Context, item *models.Item) error
	SaveSwapOffer(ctx context.Context, offer *models.SwapOffer) error
	CreateItem(ctx context.Context, item *models.Item) error
	CreateBid(ctx context.Context, bid *models.Bid) error
	CreateSwapOffer(ctx context.Context, offer *models.SwapOffer) error
	AppendLedger(ctx context.Context, record *models.LedgerRecord) error
	CreateNotification(ctx context.Context, notification *models.Notification) error
	DeleteSwapOffer(ctx context.Context, id uuid.UUID) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// Store 定義了交易執行的抽象
// 衝突重試只在這一層集中處理，呼叫端不需要也不應該自行重試
type Store interface {
	// RunTransaction 以單一原子交易執行 fn
	// fn 必須是純函數：只依賴交易內讀到的狀態，不能有外部副作用，
	// 因為發生衝突時 fn 會被重新執行
	// 重試額度用盡時回傳 ErrTxRetryExhausted
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Queries 定義了引擎之外的唯讀查詢（錢包歷史、提案清單、通知清單等）
// 這些查詢不參與交易，讀到的是當下已提交的狀態
type Queries interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindSwapOffer(ctx context.Context, id uuid.UUID) (*models.SwapOffer, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	ListBidsByItem(ctx context.Context, itemID uuid.UUID) ([]models.Bid, error)
	// ListSwapOffersByUser 列出使用者收到（incoming=true）或送出的提案
	ListSwapOffersByUser(ctx context.Context, userID uuid.UUID, incoming bool) ([]models.SwapOffer, error)
	// ListLedgerByUser 列出使用者參與（作為任一方）的帳本紀錄
	ListLedgerByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerRecord, error)
	// HasLedgerPair 判斷 buyer 是否曾與 seller 完成交易：
	// 存在 from=buyer,to=seller 的任何紀錄，或 from=seller,to=buyer 的 SWAP 紀錄
	HasLedgerPair(ctx context.Context, buyerID, sellerID uuid.UUID) (bool, error)
	ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
}
