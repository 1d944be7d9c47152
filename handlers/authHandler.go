package handlers

import (
	"net/http"
	"time"

	"critterserver/auth"
	"critterserver/middlewares"
	"critterserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenHandler はトークンの発行・更新を行います。
// トークンが提供された場合は検証し、期限が近ければ同じユーザーIDで再発行します。
// トークンがない場合は新しいユーザーを作成してトークンを発行します。
func TokenHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Token request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Token != "" {
		// トークンが提供された場合、そのトークンをパースして検証
		claims := &models.MyClaims{}
		token, err := jwt.ParseWithClaims(request.Token, claims, func(token *jwt.Token) (interface{}, error) {
			return auth.JwtKey, nil
		})

		if err != nil || !token.Valid {
			logger.Error("Token validation error", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証失敗"})
			return
		}

		// トークンの有効期限チェック。残り1時間を切っていたら再発行
		needUpdate := time.Until(time.Unix(claims.ExpiresAt, 0)) < time.Hour
		if needUpdate {
			newToken, _, err := middlewares.GenerateToken(db, logger, claims.SubscriptionStatus, claims.UserID)
			if err != nil {
				logger.Error("Token generation error", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": newToken, "userId": claims.UserID})
			return
		}

		// トークンが有効な場合、認証成功
		c.JSON(http.StatusOK, gin.H{"message": "認証成功", "userId": claims.UserID})
		return
	}

	// トークンがない場合、新しいトークンを生成
	token, userID, err := middlewares.GenerateToken(db, logger, request.SubscriptionStatus, 0)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": userID})
}
