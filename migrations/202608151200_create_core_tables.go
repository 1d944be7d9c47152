package main

import (
	"os"

	"critterserver/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var logger *zap.Logger

func init() {
	var err error
	// Zapのロガーを設定
	logger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
}

// マイグレーションを実行する関数
func AutoMigrateDB(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.CreatureType{},
		&models.Spawn{},
		&models.Catch{},
		&models.Gym{},
		&models.GymPresence{},
	)
	if err != nil {
		panic("Error migrating tables: " + err.Error())
	}

	// 生存中のジムスポーンをジムごとに最大1件に制限する部分ユニークインデックス。
	// 複数クライアントの同時クォーラムチェックによる二重作成をストレージ層で防ぎます。
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_live_gym_spawn
		ON spawns (gym_id)
		WHERE gym_id IS NOT NULL AND deleted_at IS NULL`).Error
	if err != nil {
		panic("Error creating gym spawn index: " + err.Error())
	}

	logger.Info("テーブル作成が完了しました")
}

func main() {
	logger.Info("アプリケーションが起動しました。")

	// 環境変数からデータベースの接続情報を取得
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := "host=" + host + " user=" + user + " dbname=" + dbname + " password=" + password + " sslmode=" + sslmode
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("データベースへの接続に失敗しました", zap.Error(err))
		return
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Error("SQLDBの取得に失敗しました", zap.Error(err))
		return
	}
	defer sqlDB.Close() // SQLDBを閉じる
	defer logger.Sync() // ロガーの終了処理

	// マイグレーションを実行
	AutoMigrateDB(gormDB)
}
