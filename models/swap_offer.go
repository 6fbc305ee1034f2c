package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SwapOfferStatus 代表交換提案的狀態
// PENDING 為初始狀態，ACCEPTED 和 REJECTED 為終態；
// GENERAL 不參與狀態機，只用來當作兩個使用者之間的對話串錨點
type SwapOfferStatus string

const (
	SwapOfferStatusPending  SwapOfferStatus = "PENDING"
	SwapOfferStatusAccepted SwapOfferStatus = "ACCEPTED"
	SwapOfferStatusRejected SwapOfferStatus = "REJECTED"
	SwapOfferStatusGeneral  SwapOfferStatus = "GENERAL"
)

// SwapOffer 代表兩個使用者之間的以物易物提案
// GENERAL 提案沒有商品，商品欄位為 NULL
type SwapOffer struct {
	gorm.Model

	ID                 uuid.UUID       `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	RequestedItemID    *uuid.UUID      `gorm:"type:uuid"`
	RequestedItemTitle string          `gorm:"type:varchar(255)"`
	OfferedItemID      *uuid.UUID      `gorm:"type:uuid"`
	OfferedItemTitle   string          `gorm:"type:varchar(255)"`
	FromUserID         uuid.UUID       `gorm:"type:uuid;not null;<-:create"`
	FromUserName       string          `gorm:"type:varchar(255)"`
	ToUserID           uuid.UUID       `gorm:"type:uuid;not null;<-:create"`
	ToUserName         string          `gorm:"type:varchar(255)"`
	Status             SwapOfferStatus `gorm:"type:varchar(16);not null;default:'PENDING'"`

	// 外鍵關聯
	FromUser User `gorm:"foreignKey:FromUserID"`
	ToUser   User `gorm:"foreignKey:ToUserID"`
}
