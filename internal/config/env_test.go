package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DMRELAY_PLATFORM_TOKEN", "bot-token")
	t.Setenv("DMRELAY_PLATFORM_API_BASE", "https://chat.example.test/api")
	t.Setenv("DMRELAY_AUTH_USERNAME", "hook")
	t.Setenv("DMRELAY_AUTH_PASSWORD", "s3cret")
	t.Setenv("DMRELAY_GUILD_ID", "7")
}

func TestFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DMRELAY_LISTEN", ":9000")
	t.Setenv("DMRELAY_REQUIRED_ROLE", "VIP")
	t.Setenv("DMRELAY_HEARTBEAT_INTERVAL", "10s")
	t.Setenv("DMRELAY_DISPATCH_MAX_IN_FLIGHT", "16")
	t.Setenv("DMRELAY_SNAPSHOT_DB_PATH", "/tmp/relay.db")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "VIP", cfg.Guild.RequiredRole)
	assert.Equal(t, 10*time.Second, cfg.Platform.HeartbeatInterval)
	assert.Equal(t, 16, cfg.Dispatch.MaxInFlight)
	assert.True(t, cfg.Snapshots.Enabled)
	assert.Equal(t, "/tmp/relay.db", cfg.Snapshots.Path)
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Listen)
	assert.Equal(t, "Cool guy", cfg.Guild.RequiredRole)
	assert.Equal(t, "Hello World", cfg.Guild.DefaultMessage)
	assert.False(t, cfg.Snapshots.Enabled)
}

func TestFromEnvMissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DMRELAY_PLATFORM_TOKEN", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform.token is required")
}
