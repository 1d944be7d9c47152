package models

import (
	"gorm.io/gorm"
)

// GymPresence モデルの定義。ジム付近にいるプレイヤーの最終確認位置。
// (GymID, UserID)ごとに1行をアップサートし、クォーラム計算にのみ使用します。
// ゲーム状態ではなく生存シグナルなので、古くなった行は定期ジョブが物理削除します。
type GymPresence struct {
	gorm.Model
	GymID     uint    `gorm:"not null;uniqueIndex:idx_gym_presence_gym_user"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_gym_presence_gym_user"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}
