package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 45*time.Second, cfg.MoveTimeout)
	assert.Equal(t, 30*time.Second, cfg.DisconnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.LeaveTimeout)
	assert.True(t, cfg.RematchSwapColors)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MOVE_TIMEOUT", "20s")
	t.Setenv("REMATCH_SWAP_COLORS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 20*time.Second, cfg.MoveTimeout)
	assert.False(t, cfg.RematchSwapColors)
}

func TestLoadRedisRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsUnknownStorageType(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid STORAGE_TYPE")
}
