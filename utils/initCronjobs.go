package utils

import (
	"time"

	"critterserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronCleaner は期限切れデータの定期削除ジョブを起動します。
// スポーンの期限判定はクエリ側でも行われるため、ここでの掃除は
// テーブルの肥大化を防ぐためのものです。
func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 期限切れスポーンを物理削除するジョブ（10分ごと）
	c.AddFunc("@every 10m", func() {
		result := db.Unscoped().
			Where("expires_at <= ?", time.Now()).
			Delete(&models.Spawn{})
		if result.Error != nil {
			logger.Error("期限切れスポーンの削除に失敗しました", zap.Error(result.Error))
		} else if result.RowsAffected > 0 {
			logger.Info("期限切れスポーンを削除しました", zap.Int64("deleted", result.RowsAffected))
		}
	})

	// 古いジムプレゼンスを物理削除するジョブ（毎時）
	// クォーラム計算は3分の鮮度ウィンドウで除外済みなので、ここは余裕を持って10分
	c.AddFunc("@hourly", func() {
		result := db.Unscoped().
			Where("updated_at <= ?", time.Now().Add(-10*time.Minute)).
			Delete(&models.GymPresence{})
		if result.Error != nil {
			logger.Error("古いジムプレゼンスの削除に失敗しました", zap.Error(result.Error))
		} else if result.RowsAffected > 0 {
			logger.Info("古いジムプレゼンスを削除しました", zap.Int64("deleted", result.RowsAffected))
		}
	})

	c.Start()
}
