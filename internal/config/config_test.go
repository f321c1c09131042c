package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("CACHE_STALE_TIME", "")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StaleTime)
	assert.Equal(t, 3, cfg.Cache.RetryCount)
	assert.Equal(t, "", cfg.Redis.Addr())
	assert.Equal(t, time.Duration(0), cfg.Demo.Latency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CACHE_STALE_TIME", "30s")
	t.Setenv("CACHE_RETRY_COUNT", "not-a-number")
	t.Setenv("SIMULATED_LATENCY", "250ms")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, 3, cfg.Cache.RetryCount)
	assert.Equal(t, 250*time.Millisecond, cfg.Demo.Latency)
	assert.False(t, cfg.Demo.Seed)
	assert.True(t, cfg.Server.IsRelease())
}
