package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType 代表通知的種類
type NotificationType string

const (
	NotificationTypeNewBid       NotificationType = "NEW_BID"
	NotificationTypeBidAccepted  NotificationType = "BID_ACCEPTED"
	NotificationTypeSwapOffer    NotificationType = "SWAP_OFFER"
	NotificationTypeSwapAccepted NotificationType = "SWAP_ACCEPTED"
	NotificationTypeSwapRejected NotificationType = "SWAP_REJECTED"
)

// Notification 代表使用者的站內通知
// 和觸發它的狀態變更寫在同一個交易中；IsRead 由讀取端事後更新
type Notification struct {
	gorm.Model

	ID      uuid.UUID        `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;<-:create"`
	Title   string           `gorm:"type:varchar(255);not null;<-:create"`
	Message string           `gorm:"type:text;not null;<-:create"`
	Type    NotificationType `gorm:"type:varchar(32);not null;<-:create"`
	Link    string           `gorm:"type:varchar(255);<-:create"`
	IsRead  bool             `gorm:"not null;default:false"`

	// 外鍵關聯
	User User `gorm:"foreignKey:UserID"`
}
