package spawning

import (
	"context"
	"time"

	"critterserver/geo"
	"critterserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// スポーンの生存時間（15分）
const SpawnTTL = 15 * time.Minute

// デフォルトの生成半径
const DefaultRadiusMeters = 500

// GenerateSpawns はプレイヤー位置の周辺にスポーンを一括生成し、作成数を返します。
// 手順: (1) 地域フィルタ済みの図鑑を取得 (2) グリッドから候補を生成
// (3) 全候補を1トランザクションで永続化。部分的な挿入は許容しません。
// 出現可能なクリーチャーがいない場合はエラーなしで0を返します。
// 短時間の連続呼び出しに対する重複排除は行いません（呼び出し側のスロットルで抑制）。
func GenerateSpawns(ctx context.Context, db *gorm.DB, logger *zap.Logger, sel *Selector, lat, lon, radiusMeters float64, inPark bool, countryCode string) (int, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return 0, geo.ErrInvalidCoordinate
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	types, err := eligibleCreatureTypes(ctx, db, countryCode)
	if err != nil {
		logger.Error("図鑑データの取得に失敗しました", zap.Error(err))
		return 0, err
	}
	if len(types) == 0 {
		logger.Warn("出現可能なクリーチャーがいません", zap.String("countryCode", countryCode))
		return 0, nil
	}

	candidates := GenerateCandidates(DefaultGridConfig(), sel, lat, lon, radiusMeters, inPark, types)
	if len(candidates) == 0 {
		return 0, nil
	}

	now := time.Now()
	spawns := make([]models.Spawn, 0, len(candidates))
	for _, cand := range candidates {
		spawns = append(spawns, models.Spawn{
			CreatureTypeID: cand.CreatureTypeID,
			Latitude:       cand.Latitude,
			Longitude:      cand.Longitude,
			ExpiresAt:      now.Add(SpawnTTL),
			InPark:         inPark,
		})
	}

	// 全件を1トランザクションで挿入
	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&spawns).Error
	}); err != nil {
		logger.Error("スポーンの挿入に失敗しました", zap.Int("count", len(spawns)), zap.Error(err))
		return 0, err
	}

	logger.Info("スポーンを生成しました",
		zap.Int("count", len(spawns)),
		zap.Bool("inPark", inPark),
	)
	return len(spawns), nil
}

// eligibleCreatureTypes は地域制限を考慮した出現可能クリーチャーの一覧を返します。
// 地域限定でないクリーチャーに加え、許可国リストに国コードが含まれる地域限定
// クリーチャーを対象とします。国コード不明の場合は地域限定なしのみ。
func eligibleCreatureTypes(ctx context.Context, db *gorm.DB, countryCode string) ([]models.CreatureType, error) {
	var global []models.CreatureType
	if err := db.WithContext(ctx).Where("region_locked = ?", false).Find(&global).Error; err != nil {
		return nil, err
	}

	if countryCode == "" {
		return global, nil
	}

	var regional []models.CreatureType
	if err := db.WithContext(ctx).Where("region_locked = ?", true).Find(&regional).Error; err != nil {
		return nil, err
	}
	for _, ct := range regional {
		if ct.AllowsCountry(countryCode) {
			global = append(global, ct)
		}
	}
	return global, nil
}
