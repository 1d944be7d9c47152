package catching

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"critterserver/geo"
	"critterserver/gyms"
	"critterserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 捕獲可能距離。配置上の上限150mより緩い100mを採用し、GPSの誤差を吸収します。
// この100mが実行時の正式なしきい値です。
const CatchRangeMeters = 100

// AttemptCatch は捕獲を検証し、成功時はスポーンを消費してCatchを作成します。
// ゲートは順番に評価されます:
// 存在 → 期限 → 距離 → （ジムスポーンなら）クォーラム → CP抽選 → 原子的な消費。
// 最後の消費はスポーン削除を関門とする1トランザクションで、削除が0行なら
// 他のプレイヤーが先に捕獲したことを意味します（1スポーンにつき勝者は最大1人）。
func AttemptCatch(ctx context.Context, db *gorm.DB, logger *zap.Logger, rng *rand.Rand, userID, spawnID uint, lat, lon float64) (*models.Catch, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, geo.ErrInvalidCoordinate
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var spawn models.Spawn
	if err := db.WithContext(ctx).First(&spawn, spawnID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpawnNotFound
		}
		return nil, err
	}

	if spawn.IsExpired(time.Now()) {
		return nil, ErrSpawnExpired
	}

	dist := geo.DistanceMeters(lat, lon, spawn.Latitude, spawn.Longitude)
	if dist > CatchRangeMeters {
		return nil, &OutOfRangeError{DistanceMeters: dist, ThresholdMeters: CatchRangeMeters}
	}

	// ジム限定スポーンは捕獲時点でもクォーラムを再確認
	if spawn.GymID != nil {
		count, err := gyms.CountPlayersAtGym(ctx, db, *spawn.GymID, gyms.GymRadiusMeters)
		if err != nil {
			return nil, err
		}
		if count < gyms.QuorumThreshold {
			return nil, &QuorumNotMetError{Current: count, Required: gyms.QuorumThreshold}
		}
	}

	cpLevel := rng.Intn(100) + 1

	caught := models.Catch{
		UserID:         userID,
		CreatureTypeID: spawn.CreatureTypeID,
		Latitude:       lat,
		Longitude:      lon,
		CPLevel:        cpLevel,
	}

	// スポーン削除とCatch挿入は成功も失敗も一体。削除が関門になるため、
	// 2人が同時に試みても勝者は1人だけになります。
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Spawn{}, spawnID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCaught
		}
		if err := tx.Create(&caught).Error; err != nil {
			return err
		}
		// 累計捕獲数を更新
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("total_catches", gorm.Expr("total_catches + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("捕獲成功",
		zap.Uint("userID", userID),
		zap.Uint("spawnID", spawnID),
		zap.Int("cpLevel", cpLevel),
	)
	return &caught, nil
}
