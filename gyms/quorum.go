package gyms

import (
	"context"
	"strings"
	"time"

	"critterserver/models"
	"critterserver/spawning"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ジムスポーンの解放に必要なプレイヤー数
const QuorumThreshold = 5

// CheckAndSpawnGymCreatures は全ジムを走査し、クォーラム（5人以上）に達していて
// かつ生存中のジムスポーンがないジムにエピック・レジェンダリーの重み付きでスポーンを
// 1体だけ作成します。スポーンが作成されたジムIDの一覧を返します。
// 複数クライアントが同時にポーリングしても、部分ユニークインデックス
// （生存行のgym_id）とトランザクション内の存在チェックにより二重作成は起きません。
// 同時実行で負けた側はエラーにせずスキップします。
func CheckAndSpawnGymCreatures(ctx context.Context, db *gorm.DB, logger *zap.Logger, sel *spawning.Selector) ([]uint, error) {
	var allGyms []models.Gym
	if err := db.WithContext(ctx).Find(&allGyms).Error; err != nil {
		return nil, err
	}

	var spawned []uint
	for _, gym := range allGyms {
		count, err := CountPlayersAtGym(ctx, db, gym.ID, GymRadiusMeters)
		if err != nil {
			return spawned, err
		}
		if count < QuorumThreshold {
			continue
		}

		created, err := spawnGymCreature(ctx, db, sel, gym.ID)
		if err != nil {
			if isUniqueViolation(err) {
				// 同時チェックに負けただけ。すでに誰かがスポーンを作成済み。
				continue
			}
			logger.Error("ジムスポーンの作成に失敗しました", zap.Uint("gymID", gym.ID), zap.Error(err))
			return spawned, err
		}
		if created {
			logger.Info("ジムスポーンを作成しました", zap.Uint("gymID", gym.ID), zap.Int("players", count))
			spawned = append(spawned, gym.ID)
		}
	}
	return spawned, nil
}

// spawnGymCreature は1つのジムに対するチェックと挿入を1トランザクションで行います。
// 期限切れのジムスポーンを先に掃除してから生存行の有無を確認します。
func spawnGymCreature(ctx context.Context, db *gorm.DB, sel *spawning.Selector, gymID uint) (bool, error) {
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// 期限切れで残っているジムスポーンを除去（ユニークインデックスの枠を空ける）
		if err := tx.Where("gym_id = ? AND expires_at <= ?", gymID, now).
			Delete(&models.Spawn{}).Error; err != nil {
			return err
		}

		var live int64
		if err := tx.Model(&models.Spawn{}).
			Where("gym_id = ? AND expires_at > ?", gymID, now).
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return nil // 生存中のジムスポーンがあるため作成しない
		}

		var types []models.CreatureType
		if err := tx.Where("region_locked = ? AND rarity IN ?", false,
			[]string{models.RarityEpic, models.RarityLegendary}).
			Find(&types).Error; err != nil {
			return err
		}
		ct := sel.PickFromTable(types, spawning.GymWeights)
		if ct == nil {
			return nil // エピック・レジェンダリーの図鑑データがない
		}

		var gym models.Gym
		if err := tx.First(&gym, gymID).Error; err != nil {
			return err
		}
		spawn := models.Spawn{
			CreatureTypeID: ct.ID,
			Latitude:       gym.Latitude,
			Longitude:      gym.Longitude,
			ExpiresAt:      now.Add(spawning.SpawnTTL),
			GymID:          &gymID,
		}
		if err := tx.Create(&spawn).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// GetGymSpawns はジムの生存中スポーンを新しい順に返します。
func GetGymSpawns(ctx context.Context, db *gorm.DB, gymID uint) ([]models.Spawn, error) {
	var spawns []models.Spawn
	err := db.WithContext(ctx).
		Preload("CreatureType").
		Where("gym_id = ? AND expires_at > ?", gymID, time.Now()).
		Order("created_at DESC").
		Find(&spawns).Error
	return spawns, err
}

// isUniqueViolation はユニーク制約違反かどうかをドライバ非依存で判定します。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "UNIQUE constraint") // SQLite
}
