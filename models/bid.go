package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bid 代表商品的出價紀錄
// 紀錄只會新增不會修改，多筆出價可以同時存在，但最多只有一筆會被接受
type Bid struct {
	gorm.Model

	ID         uuid.UUID `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	BidderID   uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	BidderName string    `gorm:"type:varchar(255);not null;<-:create"`
	Amount     uint32    `gorm:"type:integer;not null;<-:create"`

	// 外鍵關聯
	Item   Item `gorm:"foreignKey:ItemID"`
	Bidder User `gorm:"foreignKey:BidderID"`
}
