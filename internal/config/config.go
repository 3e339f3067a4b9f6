// Package config defines the QuiverX configuration and its validation.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by QUIVERX_* environment variables.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Supabase SupabaseConfig `toml:"supabase"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Export   ExportConfig   `toml:"export"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
	LogLevel string         `toml:"log_level"`
}

// Source kinds.
const (
	SourceStatic   = "static"
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

// SourceConfig selects where the dashboard dataset comes from.
type SourceConfig struct {
	Kind string `toml:"kind"`
	// Path is the YAML/JSON document read by the file source.
	Path string `toml:"path"`
	// Key is the object key read by the s3 source.
	Key string `toml:"key"`
	// CacheTTL enables the Redis read-through cache for remote sources.
	CacheTTL duration `toml:"cache_ttl"`

	BreakerFailures int      `toml:"breaker_failures"`
	BreakerTimeout  duration `toml:"breaker_timeout"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters.
type SupabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. An empty Addr selects the
// in-process cache, limiter, lock and bus.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	PartSizeMB     int    `toml:"part_size_mb"`
}

// duration wraps time.Duration so the TOML decoder accepts "5m" or "30s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is
	// believed. Empty means the direct peer is always the client.
	TrustedProxies []string `toml:"trusted_proxies"`
}

// RefreshConfig controls the background snapshot refresher.
type RefreshConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval duration `toml:"interval"`
}

// ExportConfig controls snapshot uploads to S3.
type ExportConfig struct {
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix"`
	// Interval schedules periodic exports; zero exports only on request.
	Interval duration `toml:"interval"`
	LockTTL  duration `toml:"lock_ttl"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// LogConfig selects the log format and an optional rotated file sink.
type LogConfig struct {
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Defaults returns a Config populated with the values in config.example.toml.
func Defaults() Config {
	return Config{
		Source: SourceConfig{
			Kind:            SourceStatic,
			Key:             "datasets/current.json",
			CacheTTL:        duration{30 * time.Second},
			BreakerFailures: 3,
			BreakerTimeout:  duration{30 * time.Second},
		},
		Supabase: SupabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:         "us-east-1",
			Bucket:         "quiverx-data",
			ForcePathStyle: true,
			PartSizeMB:     5,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       120,
			RateLimitWindow: duration{time.Minute},
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: duration{30 * time.Second},
		},
		Export: ExportConfig{
			Prefix:  "quiverx",
			LockTTL: duration{2 * time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity.high_profit", "refresh.failed"},
		},
		Log: LogConfig{
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		LogLevel: "info",
	}
}

var validSources = map[string]bool{
	SourceStatic:   true,
	SourceFile:     true,
	SourcePostgres: true,
	SourceS3:       true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

// UsesPostgres reports whether any component needs a database connection.
func (c *Config) UsesPostgres() bool { return c.Source.Kind == SourcePostgres }

// UsesS3 reports whether any component needs object storage.
func (c *Config) UsesS3() bool { return c.Source.Kind == SourceS3 || c.Export.Enabled }

// Validate checks Config for invalid or missing values and returns a combined
// error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log: format must be json or text, got %q", c.Log.Format))
	}

	if !validSources[c.Source.Kind] {
		errs = append(errs, fmt.Sprintf("source: unknown kind %q (valid: static, file, postgres, s3)", c.Source.Kind))
	}
	if c.Source.Kind == SourceFile && strings.TrimSpace(c.Source.Path) == "" {
		errs = append(errs, "source: path is required for kind file")
	}
	if c.Source.Kind == SourceS3 && strings.TrimSpace(c.Source.Key) == "" {
		errs = append(errs, "source: key is required for kind s3")
	}
	if c.Source.CacheTTL.Duration < 0 {
		errs = append(errs, "source: cache_ttl must not be negative")
	}

	if c.UsesPostgres() {
		if strings.TrimSpace(c.Supabase.DSN) == "" {
			if c.Supabase.Host == "" {
				errs = append(errs, "supabase: host must not be empty (or set supabase.dsn)")
			}
			if c.Supabase.Port <= 0 || c.Supabase.Port > 65535 {
				errs = append(errs, fmt.Sprintf("supabase: port must be 1-65535, got %d", c.Supabase.Port))
			}
			if c.Supabase.Database == "" {
				errs = append(errs, "supabase: database must not be empty")
			}
		}
		if c.Supabase.PoolMaxConns < 1 {
			errs = append(errs, "supabase: pool_max_conns must be >= 1")
		}
		if c.Supabase.PoolMinConns < 0 || c.Supabase.PoolMinConns > c.Supabase.PoolMaxConns {
			errs = append(errs, "supabase: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.UsesS3() {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.PartSizeMB < 5 {
			errs = append(errs, "s3: part_size_mb must be >= 5")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateLimitWindow.Duration <= 0 {
			errs = append(errs, "server: rate_limit_window must be > 0 when rate_limit is set")
		}
		for _, p := range c.Server.TrustedProxies {
			if !validProxy(p) {
				errs = append(errs, fmt.Sprintf("server: trusted_proxies entry %q is not an IP or CIDR", p))
			}
		}
	}

	if c.Refresh.Enabled && c.Refresh.Interval.Duration < time.Second {
		errs = append(errs, "refresh: interval must be at least 1s")
	}

	if c.Export.Enabled {
		if strings.Trim(c.Export.Prefix, "/") == "" {
			errs = append(errs, "export: prefix must not be empty")
		}
		if c.Export.Interval.Duration < 0 {
			errs = append(errs, "export: interval must not be negative")
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
