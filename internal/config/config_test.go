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

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1000, cfg.MaxMessageLength)
	assert.Equal(t, 100, cfg.MaxMessageHistory)
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.ShowSources)
	assert.Equal(t, "bottom-right", cfg.Position)
	assert.Equal(t, "auto", cfg.Theme)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHAT_BASE_URL", "http://example.com:9000")
	t.Setenv("CHAT_TIMEOUT", "5s")
	t.Setenv("CHAT_MAX_MESSAGE_HISTORY", "25")
	t.Setenv("CHAT_WIDGET_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://example.com:9000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 25, cfg.MaxMessageHistory)
	assert.False(t, cfg.Enabled)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("CHAT_MAX_MESSAGE_HISTORY", "0")

	_, err := Load()
	assert.Error(t, err)
}
