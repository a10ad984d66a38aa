package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "APP_PORT", "DB_DRIVER", "MODEL_STORE_DRIVER", "MODEL_STORE_DIR",
		"MODEL_MAX_UPLOAD_MB", "STATS_RECENT_DAYS", "CORS_ALLOWED_ORIGINS", "QUEUE_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, StoreLocal, cfg.ModelStore.Driver)
	assert.Equal(t, "./3d", cfg.ModelStore.Dir)
	assert.Equal(t, int64(10<<20), cfg.ModelStore.MaxUploadBytes)
	assert.Equal(t, 30, cfg.Stats.RecentDays)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Redis.QueueEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("MODEL_MAX_UPLOAD_MB", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("RECONCILE_PRUNE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, int64(2<<20), cfg.ModelStore.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Reconcile.Prune)
}

func TestLoad_RejectsUnknownDrivers(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DB_DRIVER", "")
	t.Setenv("MODEL_STORE_DRIVER", "ftp")
	_, err = Load()
	require.Error(t, err)
}

func TestValidate_ProductionNeedsDBPassword(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_CONNECTIONS", "4")
	t.Setenv("DB_MIN_CONNECTIONS", "2")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	dbCfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, dbCfg.Port)
	assert.Equal(t, int32(4), dbCfg.MaxConns)
	assert.Equal(t, int32(2), dbCfg.MinConns)
	assert.Equal(t, 250*time.Millisecond, dbCfg.RetryDelay)
}

func TestLoadDatabaseConfig_InvalidValues(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	_, err := LoadDatabaseConfig()
	require.Error(t, err)

	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_MAX_CONNECTIONS", "2")
	t.Setenv("DB_MIN_CONNECTIONS", "5")
	_, err = LoadDatabaseConfig()
	require.Error(t, err)
}
