package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemStatus 代表商品的狀態
// SWAPPED 為終態，一旦進入就不能再接受出價或交換
type ItemStatus string

const (
	ItemStatusActive  ItemStatus = "ACTIVE"
	ItemStatusSwapped ItemStatus = "SWAPPED"
)

// Item 代表交換平台中的商品
// 包含商品資訊、目前價格以及最高出價者
type Item struct {
	gorm.Model

	ID              uuid.UUID  `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	Title           string     `gorm:"type:varchar(255);not null"`
	Description     string     `gorm:"type:text;not null"`
	Category        string     `gorm:"type:varchar(255)"`
	Images          []string   `gorm:"serializer:json;type:jsonb;default:'[]'"`
	Status          ItemStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	Price           uint32     `gorm:"type:integer;not null;default:0"`
	HighestBidderID *uuid.UUID `gorm:"type:uuid"`

	// 外鍵關聯
	Owner         User  `gorm:"foreignKey:OwnerID"`
	HighestBidder *User `gorm:"foreignKey:HighestBidderID"`
}
