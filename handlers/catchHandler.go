package handlers

import (
	"errors"
	"net/http"

	"critterserver/catching"
	"critterserver/geo"
	"critterserver/middlewares"
	"critterserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatchHandler は捕獲リクエストを処理します。認証必須。
// 失敗の種別ごとに異なるレスポンスを返します。プレイヤーの次の行動が
// 「近づく」「別の対象を選ぶ」「人を集める」と異なるため、まとめてはいけません。
func CatchHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		return
	}

	var request models.CatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Catch request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caught, err := catching.AttemptCatch(c.Request.Context(), db, logger, nil,
		userID, request.SpawnID, request.Latitude, request.Longitude)
	if err != nil {
		var outOfRange *catching.OutOfRangeError
		var quorum *catching.QuorumNotMetError
		switch {
		case errors.Is(err, geo.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		case errors.Is(err, catching.ErrSpawnNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "This creature is no longer available"})
		case errors.Is(err, catching.ErrSpawnExpired):
			c.JSON(http.StatusGone, gin.H{"error": "This creature has disappeared"})
		case errors.Is(err, catching.ErrAlreadyCaught):
			c.JSON(http.StatusConflict, gin.H{"error": "Someone else caught this creature first"})
		case errors.As(err, &outOfRange):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           "You are too far away",
				"distanceMeters":  outOfRange.DistanceMeters,
				"thresholdMeters": outOfRange.ThresholdMeters,
			})
		case errors.As(err, &quorum):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Not enough players at this gym",
				"current":  quorum.Current,
				"required": quorum.Required,
			})
		default:
			logger.Error("捕獲処理に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Catch failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"catch": caught})
}
