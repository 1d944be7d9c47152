package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"critterserver/auth"
	"critterserver/gyms"
	"critterserver/models"
	"critterserver/spawning"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleConnections は位置情報フィードのWebSocket接続を処理します。
// クライアントは位置情報メッセージを送信し、サーバーは周辺スポーンを返信します。
// あわせて100m以内のジムへのプレゼンス記録も行います。
func HandleConnections(ctx context.Context, w http.ResponseWriter, r *http.Request, db *gorm.DB, rdb *redis.Client, logger *zap.Logger, clients *Registry, upgrader websocket.Upgrader) {
	// トークンをクエリパラメータから取得して検証。
	// トークンがない場合は既存セッションIDによる再接続を受け付けます。
	var userID uint
	tokenString := r.URL.Query().Get("token")
	if tokenString != "" {
		claims := &models.MyClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return auth.JwtKey, nil
		})
		if err != nil || !token.Valid {
			logger.Error("WebSocket認証に失敗しました", zap.Error(err))
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
	} else {
		session := ValidateSessionID(ctx, rdb, r.URL.Query().Get("session"), logger)
		if session == nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID = session.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocketへのアップグレードに失敗しました", zap.Error(err))
		return
	}

	client := &models.Client{
		Conn:   conn,
		UserID: userID,
	}
	clients.Add(client)

	// セッションIDを発行してクライアントに通知
	if err := GenerateAndStoreSessionID(ctx, client, rdb, logger); err != nil {
		logger.Error("セッションIDの発行に失敗しました", zap.Error(err))
	}

	go MaintainWebSocketConnection(client, logger)
	go handleClient(ctx, client, db, logger, clients)
}

// クライアントごとにメッセージ読み取りするゴルーチン。
// Registryからの削除はこのゴルーチンだけが行います。
func handleClient(ctx context.Context, client *models.Client, db *gorm.DB, logger *zap.Logger, clients *Registry) {
	defer func() {
		client.Conn.Close()
		clients.Remove(client)
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		var msg models.LocationMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Error("Error decoding message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "location":
			handleLocationUpdate(ctx, client, db, logger, msg)
		default:
			logger.Info("Received unknown message type", zap.String("type", msg.Type))
		}
	}
}

// handleLocationUpdate は位置情報の更新を処理します。
// 周辺スポーンの返信と、付近のジムへのプレゼンス記録を行います。
func handleLocationUpdate(ctx context.Context, client *models.Client, db *gorm.DB, logger *zap.Logger, msg models.LocationMessage) {
	spawns, err := spawning.GetNearbySpawns(ctx, db, msg.Latitude, msg.Longitude, msg.RadiusMeters)
	if err != nil {
		sendErrorMessage(client, "Failed to fetch nearby spawns")
		return
	}

	tracked, err := gyms.TrackPlayerAtGyms(ctx, db, client.UserID, msg.Latitude, msg.Longitude)
	if err != nil {
		logger.Error("ジムプレゼンスの記録に失敗しました", zap.Uint("userID", client.UserID), zap.Error(err))
	}

	response := map[string]interface{}{
		"type":        "spawns",
		"spawns":      spawns,
		"trackedGyms": tracked,
	}
	responseJSON, _ := json.Marshal(response)
	if err := client.Conn.WriteMessage(websocket.TextMessage, responseJSON); err != nil {
		logger.Error("Failed to send spawns message", zap.Uint("to", client.UserID), zap.Error(err))
	}
}

// Helper function to send error message to the client via WebSocket
func sendErrorMessage(client *models.Client, errorMessage string) {
	errorResponse := map[string]string{"error": errorMessage}
	errorJSON, _ := json.Marshal(errorResponse)
	client.Conn.WriteMessage(websocket.TextMessage, errorJSON) // Ignoring error for simplicity
}
