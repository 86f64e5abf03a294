package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://story-api.dicoding.dev/v1", c.APIBaseURL)
	assert.Equal(t, "storymap.db", c.DatabasePath)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 3*time.Second, c.ProbeTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "https://story-api.dicoding.dev/v1", cfg.APIBaseURL)
	assert.Equal(t, "storymap.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
}
