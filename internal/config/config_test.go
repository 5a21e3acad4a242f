package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 100, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"room1", "room2"}, cfg.Chat.PublicRooms)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHAT_PUBLIC_ROOMS", "lobby, random ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"lobby", "random"}, cfg.Chat.PublicRooms)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestSplitRoomsDropsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitRooms("a,,b, "))
	assert.Empty(t, splitRooms(""))
}
