package models

import (
	"gorm.io/gorm"
)

// User モデルの定義
type User struct {
	gorm.Model
	SubscriptionStatus string `gorm:"not null"`           // 課金ステータス
	TotalCatches       int    `gorm:"not null;default:0"` // 累計捕獲数
}
