package gyms

import (
	"context"
	"time"

	"critterserver/geo"
	"critterserver/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// ジムの有効半径。この範囲内のプレイヤーをクォーラムに数えます。
	GymRadiusMeters = 100

	// プレゼンスの鮮度ウィンドウ。クライアントは30秒間隔で位置を更新するため、
	// 3分（6回分の欠落）を超えた行はクォーラムに数えません。
	// 古いプレゼンスがクォーラムを永遠に膨らませるのを防ぎます。
	PresenceStalenessWindow = 3 * time.Minute
)

// PlayerPresence はジム付近のプレイヤー1人分の情報です。
type PlayerPresence struct {
	UserID         uint      `json:"userId"`
	DistanceMeters float64   `json:"distanceMeters"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdatePresence はプレイヤーのジム付近での位置を記録します。
// (gym_id, user_id)をキーにアップサートし、updated_atは常に更新されます。冪等です。
func UpdatePresence(ctx context.Context, db *gorm.DB, gymID, userID uint, lat, lon float64) error {
	if !geo.IsValidCoordinate(lat, lon) {
		return geo.ErrInvalidCoordinate
	}

	var gym models.Gym
	if err := db.WithContext(ctx).First(&gym, gymID).Error; err != nil {
		return err
	}

	presence := models.GymPresence{
		GymID:     gymID,
		UserID:    userID,
		Latitude:  lat,
		Longitude: lon,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gym_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "updated_at"}),
	}).Create(&presence).Error
}

// CountPlayersAtGym はジムの半径内にいる新鮮なプレゼンスを持つプレイヤー数を返します。
// (gym_id, user_id)のユニーク制約により同一ユーザーの重複カウントはありません。
func CountPlayersAtGym(ctx context.Context, db *gorm.DB, gymID uint, radiusMeters float64) (int, error) {
	players, err := GetPlayersNearGym(ctx, db, gymID, radiusMeters)
	if err != nil {
		return 0, err
	}
	return len(players), nil
}

// GetPlayersNearGym はジム付近にいるプレイヤーの一覧を距離付きで返します。
// ジムパネルUIの「いま何人いるか」表示に使われます。
func GetPlayersNearGym(ctx context.Context, db *gorm.DB, gymID uint, radiusMeters float64) ([]PlayerPresence, error) {
	if radiusMeters <= 0 {
		radiusMeters = GymRadiusMeters
	}

	var gym models.Gym
	if err := db.WithContext(ctx).First(&gym, gymID).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-PresenceStalenessWindow)
	var presences []models.GymPresence
	err := db.WithContext(ctx).
		Where("gym_id = ? AND updated_at > ?", gymID, cutoff).
		Find(&presences).Error
	if err != nil {
		return nil, err
	}

	players := make([]PlayerPresence, 0, len(presences))
	for _, p := range presences {
		dist := geo.DistanceMeters(gym.Latitude, gym.Longitude, p.Latitude, p.Longitude)
		if dist <= radiusMeters {
			players = append(players, PlayerPresence{
				UserID:         p.UserID,
				DistanceMeters: dist,
				UpdatedAt:      p.UpdatedAt,
			})
		}
	}
	return players, nil
}

// TrackPlayerAtGyms はプレイヤーの半径100m以内にある全ジムへプレゼンスを記録し、
// 更新したジムIDの一覧を返します。位置情報の更新時に呼び出されます。
func TrackPlayerAtGyms(ctx context.Context, db *gorm.DB, userID uint, lat, lon float64) ([]uint, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, geo.ErrInvalidCoordinate
	}

	var gyms []models.Gym
	if err := db.WithContext(ctx).Find(&gyms).Error; err != nil {
		return nil, err
	}

	var tracked []uint
	for _, gym := range gyms {
		if geo.DistanceMeters(lat, lon, gym.Latitude, gym.Longitude) > GymRadiusMeters {
			continue
		}
		if err := UpdatePresence(ctx, db, gym.ID, userID, lat, lon); err != nil {
			return tracked, err
		}
		tracked = append(tracked, gym.ID)
	}
	return tracked, nil
}
