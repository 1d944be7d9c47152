package realtime

import (
	"time"

	"critterserver/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MaintainWebSocketConnection はクライアントのWebSocket接続を維持し、Ping/Pongメッセージで接続をチェックします。
// 接続を閉じるだけでRegistryの掃除は読み取りゴルーチンに任せます。
func MaintainWebSocketConnection(c *models.Client, logger *zap.Logger) {
	defer func() {
		c.Conn.Close()
		logger.Info("Client removed", zap.Uint("UserID", c.UserID))
	}()

	// Pongハンドラの設定
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second)) // 60秒の読み取りデッドラインを更新
		return nil
	})

	// Pingの送信間隔を設定
	pingPeriod := 10 * time.Second
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			logger.Info("Ping failed, closing connection", zap.Uint("UserID", c.UserID), zap.Error(err))
			return
		}
	}
}
