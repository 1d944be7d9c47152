package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"critterserver/auth"
	"critterserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// リクエストからJWTトークンを取得し、ユーザーIDを解析して返します。
// 匿名のまま処理を続行することはなく、認証失敗時はここでレスポンスを返します。
func GetUserIDFromToken(c *gin.Context, logger *zap.Logger) (uint, error) {
	// トークンをリクエストヘッダーから取得
	tokenString := c.GetHeader("Authorization")

	// Bearerトークンのプレフィックスを確認し、存在する場合は削除
	if strings.HasPrefix(tokenString, "Bearer ") {
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	if tokenString == "" {
		logger.Error("Token string is empty")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return 0, fmt.Errorf("token is required")
	}

	// JWTトークンの解析
	token, err := jwt.ParseWithClaims(tokenString, &models.MyClaims{}, func(token *jwt.Token) (interface{}, error) {
		return auth.JwtKey, nil
	})

	if err != nil || !token.Valid {
		logger.Error("Failed to parse JWT token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return 0, fmt.Errorf("invalid token")
	}

	// クレームの検証とユーザーIDの取得
	if claims, ok := token.Claims.(*models.MyClaims); ok {
		return claims.UserID, nil
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
	return 0, fmt.Errorf("invalid token claims")
}
