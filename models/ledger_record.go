package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerType 代表帳本紀錄的種類
type LedgerType string

const (
	LedgerTypeCreditPurchase LedgerType = "CREDIT_PURCHASE"
	LedgerTypeBidWin         LedgerType = "BID_WIN"
	LedgerTypeSwap           LedgerType = "SWAP"
)

// LedgerRecord 代表一筆已完成交易的帳本紀錄
// 純粹 append-only，寫入後永遠不會修改，
// 是「使用者 A 是否和使用者 B 交易過」這類資格判斷的唯一依據
type LedgerRecord struct {
	gorm.Model

	ID               uuid.UUID  `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	Type             LedgerType `gorm:"type:varchar(32);not null;<-:create"`
	FromUserID       *uuid.UUID `gorm:"type:uuid;<-:create"`
	ToUserID         uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	Credits          uint32     `gorm:"type:integer;not null;<-:create"`
	ItemID           *uuid.UUID `gorm:"type:uuid;<-:create"`
	ItemTitle        string     `gorm:"type:varchar(255);<-:create"`
	OfferedItemID    *uuid.UUID `gorm:"type:uuid;<-:create"`
	OfferedItemTitle string     `gorm:"type:varchar(255);<-:create"`
}
