package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"critterserver/geo"
	"critterserver/gyms"
	"critterserver/middlewares"
	"critterserver/models"
	"critterserver/spawning"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdatePresenceHandler はジムへのプレゼンス更新を受け付けます。認証必須。
func UpdatePresenceHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		return
	}

	gymID, err := parseGymID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}

	var request models.PresenceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = gyms.UpdatePresence(c.Request.Context(), db, gymID, userID, request.Latitude, request.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
		default:
			logger.Error("プレゼンス更新に失敗しました", zap.Uint("gymID", gymID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update presence"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// GymPlayersHandler はジム付近のプレイヤー一覧と人数を返します。
func GymPlayersHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	gymID, err := parseGymID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}
	radius, err := strconv.ParseFloat(c.Query("radius"), 64)
	if err != nil {
		radius = gyms.GymRadiusMeters
	}

	players, err := gyms.GetPlayersNearGym(c.Request.Context(), db, gymID, radius)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
			return
		}
		logger.Error("ジムのプレイヤー取得に失敗しました", zap.Uint("gymID", gymID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch players"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(players), "players": players})
}

// GymSpawnsHandler はジムの生存中スポーンを返します。
func GymSpawnsHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	gymID, err := parseGymID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}

	spawns, err := gyms.GetGymSpawns(c.Request.Context(), db, gymID)
	if err != nil {
		logger.Error("ジムスポーンの取得に失敗しました", zap.Uint("gymID", gymID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gym spawns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spawns": spawns})
}

// CheckGymSpawnsHandler はクォーラム判定とジムスポーン作成のトリガーです。
// クライアントが定期的に呼び出します。複数クライアントの同時呼び出しは安全です。
func CheckGymSpawnsHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger, sel *spawning.Selector) {
	spawned, err := gyms.CheckAndSpawnGymCreatures(c.Request.Context(), db, logger, sel)
	if err != nil {
		logger.Error("ジムスポーンチェックに失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gym spawn check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spawnedGymIds": spawned})
}

func parseGymID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}
