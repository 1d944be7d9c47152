package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"critterserver/geo"
	"critterserver/middlewares"
	"critterserver/spawning"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"critterserver/models"
)

// スポーン生成のスロットル間隔。30秒以内の連続リクエストは拒否します。
// 生成エンジン自体は重複排除を行わないため、過剰生成はここで抑えます。
const spawnThrottleWindow = 30 * time.Second

// GenerateSpawnsHandler はプレイヤー周辺のスポーン生成を受け付けます。認証必須。
func GenerateSpawnsHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger, sel *spawning.Selector) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		return // レスポンスはGetUserIDFromToken内で送信済み
	}

	var request models.GenerateSpawnsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Generate spawns request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// ユーザーごとのスロットル。SETNXが失敗した場合はウィンドウ内の再呼び出し
	throttleKey := fmt.Sprintf("spawn_throttle:%d", userID)
	ok, err := rdb.SetNX(c.Request.Context(), throttleKey, 1, spawnThrottleWindow).Result()
	if err != nil {
		logger.Error("スロットルキーの設定に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Spawn generation is throttled. Try again later."})
		return
	}

	count, err := spawning.GenerateSpawns(c.Request.Context(), db, logger, sel,
		request.Latitude, request.Longitude, request.RadiusMeters, request.InPark, request.CountryCode)
	if err != nil {
		// 失敗したリクエストにスロットル枠を消費させない
		if delErr := rdb.Del(c.Request.Context(), throttleKey).Err(); delErr != nil {
			logger.Error("スロットルキーの解放に失敗しました", zap.Error(delErr))
		}
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spawns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": count})
}

// NearbySpawnsHandler は周辺の生存スポーンを近い順に返します（最大50件）。
func NearbySpawnsHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}
	radius, err := strconv.ParseFloat(c.Query("radius"), 64)
	if err != nil {
		radius = spawning.DefaultRadiusMeters
	}

	spawns, err := spawning.GetNearbySpawns(c.Request.Context(), db, lat, lon, radius)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		logger.Error("周辺スポーンの取得に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spawns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spawns": spawns})
}
