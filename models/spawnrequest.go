package models

// GenerateSpawnsRequest はスポーン生成リクエストを表します。
// InParkと国コードは外部のジオコーディング処理で判定された値をそのまま受け取ります。
type GenerateSpawnsRequest struct {
	Latitude     float64 `json:"latitude"`              // 座標(0,0)も有効なため必須バリデーションはエンジン側で行う
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`          // 省略時は500m
	InPark       bool    `json:"inPark"`                // 公園内ブースト
	CountryCode  string  `json:"countryCode,omitempty"` // 不明な場合は空文字
}

// CatchRequest は捕獲リクエストを表します。
type CatchRequest struct {
	SpawnID   uint    `json:"spawnId" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PresenceRequest はジムへのプレゼンス更新リクエストを表します。
type PresenceRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
