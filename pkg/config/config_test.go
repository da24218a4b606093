package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 60*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestLoad_Variables(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "p@ss:word")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageDriverPostgres, cfg.App.StorageDriver)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, "postgres://postgres:p%40ss%3Aword@db:5432/stock_ledger?sslmode=disable", cfg.DB.ConnectionString())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mysql")
	cfg, err := config.Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_RatioFueraDeRango(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("OTEL_SAMPLING_RATIO", "3")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_PoolDeConexiones(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_MIN_CONNS", "4")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, int32(4), cfg.DB.MinConns)

	t.Setenv("DB_MIN_CONNS", "20")
	_, err = config.Load()
	assert.Error(t, err, "mínimo mayor que máximo")
}
