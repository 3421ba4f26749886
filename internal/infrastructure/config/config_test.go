package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8600", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "sm:", cfg.Broker.WellKnownName)
	assert.Equal(t, uint32(64), cfg.Broker.MaxSessions)
	assert.Empty(t, cfg.Broker.SeedServices)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":            "9100",
		"SM_NAME":         "srv:",
		"SM_MAX_SESSIONS": "32",
		"LOG_LEVEL":       "debug",
		"LOG_DEV":         "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "srv:", cfg.Broker.WellKnownName)
	assert.Equal(t, uint32(32), cfg.Broker.MaxSessions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestSeedParsing(t *testing.T) {
	broker := BrokerConfig{
		SeedServices:    []string{"fs=4", "cfg", " ", "dsp=bad"},
		SeedMaxSessions: 16,
	}

	seeds := broker.Seeds()
	require.Len(t, seeds, 3)
	assert.Equal(t, Seed{Name: "fs", MaxSessions: 4}, seeds[0])
	assert.Equal(t, Seed{Name: "cfg", MaxSessions: 16}, seeds[1])
	// Malformed capacity falls back to the default.
	assert.Equal(t, Seed{Name: "dsp", MaxSessions: 16}, seeds[2])
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	os.Unsetenv("PORT")
	cfg := LoadOrDefault()
	require.NotNil(t, cfg)
	assert.Equal(t, "8600", cfg.Server.Port)
}
