package spawning

import (
	"context"
	"math"
	"sort"
	"time"

	"critterserver/geo"
	"critterserver/models"

	"gorm.io/gorm"
)

// 通常フィードの最大件数
const MaxNearbySpawns = 50

// NearbySpawn は距離情報付きのスポーンです。
type NearbySpawn struct {
	models.Spawn
	DistanceMeters float64 `json:"distanceMeters"`
}

// GetNearbySpawns は指定地点から半径内の生存スポーンを近い順に返します（最大50件）。
// 期限切れのスポーンと、ジム限定スポーン（gym_idあり）は除外されます。
// ジムスポーンはジム側のフィードからのみ取得され、二重表示を防ぎます。
func GetNearbySpawns(ctx context.Context, db *gorm.DB, lat, lon, radiusMeters float64) ([]NearbySpawn, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, geo.ErrInvalidCoordinate
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	// バウンディングボックスで粗く絞り込んでから正確な距離で判定
	latDelta := radiusMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01 // 極付近での発散を防ぐ
	}
	lonDelta := radiusMeters / (metersPerDegreeLat * cosLat)

	var spawns []models.Spawn
	err := db.WithContext(ctx).
		Preload("CreatureType").
		Where("expires_at > ?", time.Now()).
		Where("gym_id IS NULL").
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lon-lonDelta, lon+lonDelta).
		Find(&spawns).Error
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbySpawn, 0, len(spawns))
	for _, s := range spawns {
		dist := geo.DistanceMeters(lat, lon, s.Latitude, s.Longitude)
		if dist <= radiusMeters {
			nearby = append(nearby, NearbySpawn{Spawn: s, DistanceMeters: dist})
		}
	}

	// 近い順、同距離はID順で安定ソート
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceMeters != nearby[j].DistanceMeters {
			return nearby[i].DistanceMeters < nearby[j].DistanceMeters
		}
		return nearby[i].ID < nearby[j].ID
	})

	if len(nearby) > MaxNearbySpawns {
		nearby = nearby[:MaxNearbySpawns]
	}
	return nearby, nil
}
