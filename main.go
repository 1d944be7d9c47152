package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"critterserver/database"  //PostgreSQLとRedisの初期化
	"critterserver/handlers"  //HTTPリクエストの処理
	"critterserver/realtime"  //位置情報フィードのWebSocket処理
	"critterserver/spawning"  //スポーン生成エンジン
	"critterserver/utils"     //ロガーの初期化とCronジョブ(期限切れデータの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// Websocket接続で用いる変数を初期化
	clients := realtime.NewRegistry()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// レアリティ抽選器（全リクエストで共有）
	selector := spawning.NewSelector(nil)

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://192.168.1.1:8080"}, //ここにデプロイサーバーのIPアドレスを設定
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.POST("/auth/token", func(c *gin.Context) {
		handlers.TokenHandler(c, db, logger)
	})
	router.POST("/spawns/generate", func(c *gin.Context) {
		handlers.GenerateSpawnsHandler(c, db, rdb, logger, selector)
	})
	router.GET("/spawns/nearby", func(c *gin.Context) {
		handlers.NearbySpawnsHandler(c, db, logger)
	})
	router.POST("/catch", func(c *gin.Context) {
		handlers.CatchHandler(c, db, logger)
	})
	router.POST("/gyms/:id/presence", func(c *gin.Context) {
		handlers.UpdatePresenceHandler(c, db, logger)
	})
	router.GET("/gyms/:id/players", func(c *gin.Context) {
		handlers.GymPlayersHandler(c, db, logger)
	})
	router.GET("/gyms/:id/spawns", func(c *gin.Context) {
		handlers.GymSpawnsHandler(c, db, logger)
	})
	router.POST("/gyms/check", func(c *gin.Context) {
		handlers.CheckGymSpawnsHandler(c, db, logger, selector)
	})
	router.GET("/ws", func(c *gin.Context) {
		// リクエストコンテキストはハンドラ復帰時にキャンセルされるため、
		// 接続の寿命に合わせたコンテキストを渡す
		realtime.HandleConnections(context.Background(), c.Writer, c.Request, db, rdb, logger, clients, upgrader)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()

	// // 本番環境ではコメントアウトを解除し、HTTPSサーバーとして運用
	// err = router.RunTLS(":443", "path/to/cert.pem", "path/to/key.pem")
	// if err != nil {
	// 	logger.Fatal("Failed to run HTTPS server: ", zap.Error(err))
	// }
}
