package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"critterserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"db_host": "localhost",
		"db_user": "critter",
		"db_password": "secret",
		"db_name": "critterdb",
		"db_sslmode": "disable"
	}`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.DBHost)
	assert.Equal(t, "critter", config.DBUser)
	assert.Equal(t, "critterdb", config.DBName)
	assert.Equal(t, "disable", config.DBSSLMode)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestInitPostgreSQLReportsFailureCause(t *testing.T) {
	orig := retryInterval
	retryInterval = time.Millisecond
	defer func() { retryInterval = orig }()

	// port=1への接続は即座に拒否される
	cfg := models.Config{
		DBHost:     "127.0.0.1 port=1",
		DBUser:     "critter",
		DBPassword: "secret",
		DBName:     "critterdb",
		DBSSLMode:  "disable",
	}
	_, err := InitPostgreSQL(cfg, zap.NewNop())
	require.Error(t, err)

	// リトライ失敗後のエラーには最後の失敗原因が含まれる
	assert.Contains(t, err.Error(), "データベース接続に失敗しました")
	assert.NotContains(t, err.Error(), "<nil>")
}
