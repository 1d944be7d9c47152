package models

import (
	"github.com/gorilla/websocket"
)

// Websocketクライアントを定義
type Client struct {
	Conn   *websocket.Conn
	UserID uint // JWTから抽出したユーザーID
}

// LocationMessage はクライアントから送信される位置情報メッセージです。
type LocationMessage struct {
	Type         string  `json:"type"` // "location"
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
}
