package spawning

import (
	"math"

	"critterserver/geo"
	"critterserver/models"
)

// スポーン配置の定数
const (
	MinSpawnDistanceMeters = 25  // プレイヤーの真上に湧かないための最小距離
	MaxSpawnDistanceMeters = 150 // 全スポーンを捕獲圏内に収める最大距離
	GridSpacingMeters      = 50  // グリッド間隔
	BaseCellProbability    = 0.25
	ParkBoostMultiplier    = 2.5

	metersPerDegreeLat = 111320 // 緯度1度あたり約111.32km
)

// GridConfig はスポーングリッドのパラメータです。テストで差し替え可能にしています。
type GridConfig struct {
	MinDistanceMeters float64
	MaxDistanceMeters float64
	SpacingMeters     float64
	CellProbability   float64
}

// DefaultGridConfig は本番用のグリッド設定を返します。
func DefaultGridConfig() GridConfig {
	return GridConfig{
		MinDistanceMeters: MinSpawnDistanceMeters,
		MaxDistanceMeters: MaxSpawnDistanceMeters,
		SpacingMeters:     GridSpacingMeters,
		CellProbability:   BaseCellProbability,
	}
}

// Candidate はグリッドから生成されたスポーン候補です。
type Candidate struct {
	Latitude       float64
	Longitude      float64
	CreatureTypeID uint
}

// GenerateCandidates は原点を中心とした正方形グリッドを走査してスポーン候補を生成します。
// 各セルは原点からの距離が[MinDistance, MaxDistance]の範囲内の場合のみ生き残り、
// セルごとに独立なベルヌーイ試行で湧きを判定します。生成数は確率的で0にもなり得ます。
func GenerateCandidates(cfg GridConfig, sel *Selector, lat, lon, radiusMeters float64, inPark bool, types []models.CreatureType) []Candidate {
	if len(types) == 0 {
		return nil
	}

	chance := cfg.CellProbability
	if inPark {
		chance *= ParkBoostMultiplier
	}

	// メートルオフセットを度に変換（局所的な正距円筒近似）
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(lat*math.Pi/180)

	gridSize := int(math.Ceil((radiusMeters * 2) / cfg.SpacingMeters))
	var candidates []Candidate

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			offsetY := (float64(i) - float64(gridSize)/2) * cfg.SpacingMeters
			offsetX := (float64(j) - float64(gridSize)/2) * cfg.SpacingMeters

			cellLat := lat + offsetY/metersPerDegreeLat
			cellLon := lon + offsetX/metersPerDegreeLon

			dist := geo.DistanceMeters(lat, lon, cellLat, cellLon)
			if dist < cfg.MinDistanceMeters || dist > cfg.MaxDistanceMeters {
				continue
			}

			if sel.rng.Float64() >= chance {
				continue
			}

			ct := sel.Pick(types, inPark)
			if ct == nil {
				continue
			}
			candidates = append(candidates, Candidate{
				Latitude:       cellLat,
				Longitude:      cellLon,
				CreatureTypeID: ct.ID,
			})
		}
	}

	return candidates
}
