package models

import (
	"time"

	"gorm.io/gorm"
)

// Spawn モデルの定義。マップ上に一時的に出現するクリーチャーのインスタンス。
// GymIDがnullでない場合はジム限定スポーン（通常フィードには表示されない）。
type Spawn struct {
	gorm.Model
	CreatureTypeID uint         `gorm:"not null;index"`
	CreatureType   CreatureType `gorm:"foreignKey:CreatureTypeID"` // 図鑑データへの参照
	Latitude       float64      `gorm:"not null;index:idx_spawns_lonlat,priority:2"`
	Longitude      float64      `gorm:"not null;index:idx_spawns_lonlat,priority:1"` // 周辺検索の範囲絞り込み用の複合インデックス
	ExpiresAt      time.Time    `gorm:"not null;index"` // 生成から15分後
	GymID          *uint        `gorm:"index"`          // ジム限定スポーンのみ設定
	InPark         bool         `gorm:"not null;default:false"` // 生成時の公園ブースト有無
}

// IsExpired はスポーンが期限切れかどうかを判定します。
func (s *Spawn) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
