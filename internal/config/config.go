package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultSessionTTL      = 24 * time.Hour
	defaultContentCacheTTL = 5 * time.Minute
	defaultContentCacheMB  = 16
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// http
	AllowedOrigins []string `toml:"allowed_origins"`
	// auth
	SessionTTL           Duration `toml:"session_ttl"`
	SessionSweepInterval Duration `toml:"session_sweep_interval"` // 0 = lazy expiry only
	// 0 = login attempts are not throttled
	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	// public content cache
	ContentCacheSizeMB int      `toml:"content_cache_size_mb"`
	ContentCacheTTL    Duration `toml:"content_cache_ttl"`
}

// Duration is a time.Duration read from TOML strings like "24h"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env %s not found", env)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.SessionTTL.Duration <= 0 {
		c.SessionTTL.Duration = defaultSessionTTL
	}
	if c.ContentCacheSizeMB <= 0 {
		c.ContentCacheSizeMB = defaultContentCacheMB
	}
	if c.ContentCacheTTL.Duration <= 0 {
		c.ContentCacheTTL.Duration = defaultContentCacheTTL
	}
}
