package models

import (
	"gorm.io/gorm"
)

// Catch モデルの定義。捕獲成功の永続記録。作成後は変更・削除されません。
type Catch struct {
	gorm.Model
	UserID         uint         `gorm:"not null;index"`
	CreatureTypeID uint         `gorm:"not null;index"`
	CreatureType   CreatureType `gorm:"foreignKey:CreatureTypeID"`
	Latitude       float64      `gorm:"not null"` // 捕獲時のプレイヤー位置
	Longitude      float64      `gorm:"not null"`
	CPLevel        int          `gorm:"not null"` // 1〜100のランダム値
}
