package auth

import (
	"os"

	"critterserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークン署名用のシークレットキーです。本番環境では必ず環境変数で設定します。
var JwtKey = []byte(secretKey())

func secretKey() string {
	key := os.Getenv("JWT_SECRET_KEY")
	if key == "" {
		key = "critterserver-dev-key" // 開発用デフォルト
	}
	return key
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}
