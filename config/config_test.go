package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "1.0.0", cfg.Server.AppVersion)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "renamed_images.zip", cfg.App.OutputName)
	assert.Equal(t, int64(256), cfg.App.MaxUploadMB)
	assert.Equal(t, 30*time.Minute, cfg.App.ResultTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9094"}, cfg.Kafka.Brokers)
	assert.Equal(t, "archive-eventlog", cfg.Kafka.GroupID)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RENAMER_SERVER_PORT", "9090")
	t.Setenv("RENAMER_APP_RESULT_TTL", "5m")
	t.Setenv("RENAMER_APP_INSPECT_IMAGES", "true")
	t.Setenv("RENAMER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RENAMER_KAFKA_GROUP_ID", "audit")

	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.App.ResultTTL)
	assert.True(t, cfg.App.InspectImages)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "audit", cfg.Kafka.GroupID)
}
