package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	FRED        FREDConfig      `mapstructure:"fred"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Sync        SyncConfig      `mapstructure:"sync"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Quality     QualityConfig   `mapstructure:"quality"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FREDConfig drives the upstream data API client.
type FREDConfig struct {
	APIKey             string `mapstructure:"api_key" json:"-" yaml:"-"`
	BaseURL            string `mapstructure:"base_url"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	RateLimitPerWindow int    `mapstructure:"rate_limit_per_window"`
	RateWindowSeconds  int    `mapstructure:"rate_window_seconds"`
	MaxRetries         int    `mapstructure:"max_retries"`
}

type CacheConfig struct {
	CurrentTTL    string `mapstructure:"current_ttl"`
	HistoricalTTL string `mapstructure:"historical_ttl"`
}

type SyncConfig struct {
	BatchSize    int `mapstructure:"batch_size"`
	LookbackDays int `mapstructure:"lookback_days"`
	Concurrency  int `mapstructure:"concurrency"`
}

type AnalysisConfig struct {
	MoveThresholdPct float64 `mapstructure:"move_threshold_pct"`
	SlopeThreshold   float64 `mapstructure:"slope_threshold"`
	OutlierZScore    float64 `mapstructure:"outlier_z_score"`
}

type QualityConfig struct {
	StaleAfterDays int `mapstructure:"stale_after_days"`
	GapWindowDays  int `mapstructure:"gap_window_days"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	SyncInterval     string `mapstructure:"sync_interval"`
	QualityCheckTime string `mapstructure:"quality_check_time"`
}

// TelemetryConfig controls OpenTelemetry tracing. An empty endpoint means
// spans are written to stdout instead of an OTLP collector.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("fred.api_key", "FRED_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FRED_API_KEY environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if config.Environment != "development" && config.FRED.APIKey == "" {
		return nil, errors.New("FRED_API_KEY environment variable is required in non-development environments")
	}

	if config.FRED.RateLimitPerWindow <= 0 || config.FRED.RateWindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid rate limit configuration: %d requests per %ds",
			config.FRED.RateLimitPerWindow, config.FRED.RateWindowSeconds)
	}

	if config.Sync.BatchSize <= 0 {
		return nil, fmt.Errorf("sync batch size must be positive, got %d", config.Sync.BatchSize)
	}

	for name, value := range map[string]string{
		"cache.current_ttl":          config.Cache.CurrentTTL,
		"cache.historical_ttl":       config.Cache.HistoricalTTL,
		"scheduler.sync_interval":    config.Scheduler.SyncInterval,
		"database.conn_max_lifetime": config.Database.ConnMaxLifetime,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	return &config, nil
}

// CurrentTTLDuration returns the parsed TTL for current-value cache entries.
func (c CacheConfig) CurrentTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CurrentTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// HistoricalTTLDuration returns the parsed TTL for historical cache entries.
func (c CacheConfig) HistoricalTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.HistoricalTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "macropulse")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.conn_max_lifetime", "300s")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// FRED upstream API
	viper.SetDefault("fred.api_key", "")
	viper.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	viper.SetDefault("fred.timeout_seconds", 30)
	viper.SetDefault("fred.rate_limit_per_window", 120)
	viper.SetDefault("fred.rate_window_seconds", 60)
	viper.SetDefault("fred.max_retries", 3)

	// Cache TTLs
	viper.SetDefault("cache.current_ttl", "5m")
	viper.SetDefault("cache.historical_ttl", "1h")

	// Incremental sync
	viper.SetDefault("sync.batch_size", 50)
	viper.SetDefault("sync.lookback_days", 365)
	viper.SetDefault("sync.concurrency", 4)

	// Analysis thresholds
	viper.SetDefault("analysis.move_threshold_pct", 5.0)
	viper.SetDefault("analysis.slope_threshold", 0.1)
	viper.SetDefault("analysis.outlier_z_score", 2.0)

	// Data quality
	viper.SetDefault("quality.stale_after_days", 7)
	viper.SetDefault("quality.gap_window_days", 30)

	// Scheduler
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.sync_interval", "6h")
	viper.SetDefault("scheduler.quality_check_time", "06:00")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.endpoint", "")
	viper.SetDefault("telemetry.sample_rate", 1.0)
}
