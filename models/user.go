package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 代表交換平台中的使用者
// 包含使用者名稱、點數餘額以及累計的售出與交換次數
type User struct {
	gorm.Model

	ID           uuid.UUID `gorm:"type:uuid;default:public.uuid_generate_v7();primaryKey;<-:false"`
	Username     string    `gorm:"type:varchar(255);not null"`
	Credits      uint32    `gorm:"type:integer;not null;default:0"`
	ItemsSold    uint32    `gorm:"type:integer;not null;default:0"`
	ItemsSwapped uint32    `gorm:"type:integer;not null;default:0"`
}
