package spawning

import (
	"path/filepath"
	"testing"

	"critterserver/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テスト用のインメモリ相当DB。本番のPostgreSQLの代わりにSQLiteファイルを使います。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CreatureType{},
		&models.Spawn{},
		&models.Catch{},
		&models.Gym{},
		&models.GymPresence{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_live_gym_spawn
		ON spawns (gym_id)
		WHERE gym_id IS NOT NULL AND deleted_at IS NULL`).Error)
	return db
}

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

func seedCreatureType(t *testing.T, db *gorm.DB, name, rarity string, regionLocked bool, allowedCountries string) models.CreatureType {
	t.Helper()
	ct := models.CreatureType{
		Name:             name,
		Rarity:           rarity,
		RegionLocked:     regionLocked,
		AllowedCountries: allowedCountries,
	}
	require.NoError(t, db.Create(&ct).Error)
	return ct
}
