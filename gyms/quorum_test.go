package gyms

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"critterserver/models"
	"critterserver/spawning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedEpicAndLegendary(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, ct := range []models.CreatureType{
		{Name: "epic-one", Rarity: models.RarityEpic},
		{Name: "legendary-one", Rarity: models.RarityLegendary},
	} {
		c := ct
		require.NoError(t, db.Create(&c).Error)
	}
}

func addPlayers(t *testing.T, db *gorm.DB, gymID uint, n int) {
	t.Helper()
	for userID := uint(1); userID <= uint(n); userID++ {
		require.NoError(t, UpdatePresence(context.Background(), db, gymID, userID, 0, 0))
	}
}

func TestCheckAndSpawnBelowQuorum(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	seedEpicAndLegendary(t, db)
	sel := spawning.NewSelector(rand.New(rand.NewSource(1)))

	// クォーラム未達（4人）ではスポーンは作成されない
	addPlayers(t, db, gym.ID, 4)

	count, err := CountPlayersAtGym(context.Background(), db, gym.ID, GymRadiusMeters)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	spawned, err := CheckAndSpawnGymCreatures(context.Background(), db, zap.NewNop(), sel)
	require.NoError(t, err)
	assert.Empty(t, spawned)

	var spawnCount int64
	require.NoError(t, db.Model(&models.Spawn{}).Count(&spawnCount).Error)
	assert.Zero(t, spawnCount)
}

func TestCheckAndSpawnAtQuorum(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	seedEpicAndLegendary(t, db)
	sel := spawning.NewSelector(rand.New(rand.NewSource(2)))
	ctx := context.Background()

	// 5人目が加わるとちょうど1体のジムスポーンが作成される
	addPlayers(t, db, gym.ID, 5)

	spawned, err := CheckAndSpawnGymCreatures(ctx, db, zap.NewNop(), sel)
	require.NoError(t, err)
	require.Len(t, spawned, 1)
	assert.Equal(t, gym.ID, spawned[0])

	var spawns []models.Spawn
	require.NoError(t, db.Preload("CreatureType").Find(&spawns).Error)
	require.Len(t, spawns, 1)
	require.NotNil(t, spawns[0].GymID)
	assert.Equal(t, gym.ID, *spawns[0].GymID)
	assert.Contains(t, []string{models.RarityEpic, models.RarityLegendary}, spawns[0].CreatureType.Rarity)
	assert.InDelta(t, spawning.SpawnTTL.Seconds(), time.Until(spawns[0].ExpiresAt).Seconds(), 60)

	// 生存中のジムスポーンがある間は再チェックしても2体目は作成されない
	spawned, err = CheckAndSpawnGymCreatures(ctx, db, zap.NewNop(), sel)
	require.NoError(t, err)
	assert.Empty(t, spawned)

	var spawnCount int64
	require.NoError(t, db.Model(&models.Spawn{}).Count(&spawnCount).Error)
	assert.EqualValues(t, 1, spawnCount)
}

func TestCheckAndSpawnReplacesExpired(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	seedEpicAndLegendary(t, db)
	sel := spawning.NewSelector(rand.New(rand.NewSource(3)))
	ctx := context.Background()

	addPlayers(t, db, gym.ID, 5)

	spawned, err := CheckAndSpawnGymCreatures(ctx, db, zap.NewNop(), sel)
	require.NoError(t, err)
	require.Len(t, spawned, 1)

	// ジムスポーンを期限切れにすると次のチェックで新しいスポーンが作成される
	require.NoError(t, db.Model(&models.Spawn{}).
		Where("gym_id = ?", gym.ID).
		UpdateColumn("expires_at", time.Now().Add(-time.Minute)).Error)

	spawned, err = CheckAndSpawnGymCreatures(ctx, db, zap.NewNop(), sel)
	require.NoError(t, err)
	require.Len(t, spawned, 1)

	var live int64
	require.NoError(t, db.Model(&models.Spawn{}).
		Where("gym_id = ? AND expires_at > ?", gym.ID, time.Now()).
		Count(&live).Error)
	assert.EqualValues(t, 1, live)
}

func TestCheckAndSpawnConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	seedEpicAndLegendary(t, db)
	ctx := context.Background()

	addPlayers(t, db, gym.ID, 5)

	// 2つのクライアントが同時にクォーラムチェックを実行しても
	// 作成されるジムスポーンは1体だけ
	var wg sync.WaitGroup
	results := make([][]uint, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		sel := spawning.NewSelector(rand.New(rand.NewSource(int64(i + 10))))
		wg.Add(1)
		go func(i int, sel *spawning.Selector) {
			defer wg.Done()
			results[i], errs[i] = CheckAndSpawnGymCreatures(ctx, db, zap.NewNop(), sel)
		}(i, sel)
	}
	wg.Wait()

	total := 0
	for i := range results {
		require.NoError(t, errs[i])
		total += len(results[i])
	}
	assert.Equal(t, 1, total)

	var spawnCount int64
	require.NoError(t, db.Model(&models.Spawn{}).
		Where("gym_id = ?", gym.ID).Count(&spawnCount).Error)
	assert.EqualValues(t, 1, spawnCount)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection reset by peer")))
	// SQLite
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: spawns.gym_id")))
	// PostgreSQL
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_live_gym_spawn" (SQLSTATE 23505)`)))
}

func TestCheckAndSpawnNoEpicTypes(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	// エピック・レジェンダリーの図鑑データなし
	ct := models.CreatureType{Name: "common-only", Rarity: models.RarityCommon}
	require.NoError(t, db.Create(&ct).Error)
	sel := spawning.NewSelector(rand.New(rand.NewSource(4)))

	addPlayers(t, db, gym.ID, 5)

	spawned, err := CheckAndSpawnGymCreatures(context.Background(), db, zap.NewNop(), sel)
	require.NoError(t, err)
	assert.Empty(t, spawned)
}

func TestGetGymSpawns(t *testing.T) {
	db := newTestDB(t)
	gym := seedGym(t, db, "Central Gym", 0, 0)
	ct := models.CreatureType{Name: "epic-one", Rarity: models.RarityEpic}
	require.NoError(t, db.Create(&ct).Error)

	gymID := gym.ID
	live := models.Spawn{CreatureTypeID: ct.ID, Latitude: 0, Longitude: 0,
		ExpiresAt: time.Now().Add(10 * time.Minute), GymID: &gymID}
	require.NoError(t, db.Create(&live).Error)

	spawns, err := GetGymSpawns(context.Background(), db, gym.ID)
	require.NoError(t, err)
	require.Len(t, spawns, 1)
	assert.Equal(t, live.ID, spawns[0].ID)
	assert.Equal(t, ct.ID, spawns[0].CreatureType.ID)
}
