package models

import (
	"gorm.io/gorm"
)

// Gym モデルの定義。実世界の地点に固定されたジム。
// 5人以上のプレイヤーが集まるとエピック・レジェンダリーのスポーンが解放されます。
type Gym struct {
	gorm.Model
	Name      string  `gorm:"not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}
