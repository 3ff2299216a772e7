package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "macropulse", cfg.Database.DBName)
	assert.Equal(t, 120, cfg.FRED.RateLimitPerWindow)
	assert.Equal(t, 60, cfg.FRED.RateWindowSeconds)
	assert.Equal(t, 3, cfg.FRED.MaxRetries)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Equal(t, 365, cfg.Sync.LookbackDays)
	assert.Equal(t, 7, cfg.Quality.StaleAfterDays)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("FRED_API_KEY", "abcdef0123456789abcdef0123456789")

	cfg, err := loadClean(t)
	require.NoError(t, err)
	assert.Equal(t, "abcdef0123456789abcdef0123456789", cfg.FRED.APIKey)
}

func TestProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := loadClean(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRED_API_KEY")
}

func TestEnvironmentIsNormalizedToLowercase(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Development")

	cfg, err := loadClean(t)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestInvalidDurationRejected(t *testing.T) {
	t.Setenv("CACHE_CURRENT_TTL", "five minutes")

	_, err := loadClean(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.current_ttl")
}

func TestTTLDurationHelpers(t *testing.T) {
	c := CacheConfig{CurrentTTL: "10m", HistoricalTTL: "2h"}
	assert.Equal(t, 10*time.Minute, c.CurrentTTLDuration())
	assert.Equal(t, 2*time.Hour, c.HistoricalTTLDuration())

	// Unparseable values fall back to the standard TTLs.
	broken := CacheConfig{CurrentTTL: "bogus", HistoricalTTL: ""}
	assert.Equal(t, 5*time.Minute, broken.CurrentTTLDuration())
	assert.Equal(t, time.Hour, broken.HistoricalTTLDuration())
}
