package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceStatic, cfg.Source.Kind)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesS3())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeTOML(t, `
log_level = "debug"

[source]
kind = "postgres"
cache_ttl = "45s"

[supabase]
dsn = "postgres://u:p@db:5432/quiverx"

[refresh]
interval = "10s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SourcePostgres, cfg.Source.Kind)
	assert.Equal(t, 45*time.Second, cfg.Source.CacheTTL.Duration)
	assert.Equal(t, 10*time.Second, cfg.Refresh.Interval.Duration)
	// Untouched sections keep their defaults.
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.True(t, cfg.UsesPostgres())
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeTOML(t, "[server]\nprot = 9000\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.prot")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUIVERX_SERVER_PORT", "9100")
	t.Setenv("QUIVERX_SERVER_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("QUIVERX_SOURCE_KIND", "file")
	t.Setenv("QUIVERX_SOURCE_PATH", "/data/dataset.yaml")
	t.Setenv("QUIVERX_REFRESH_INTERVAL", "2m")
	t.Setenv("QUIVERX_REDIS_POOL_SIZE", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, SourceFile, cfg.Source.Kind)
	assert.Equal(t, "/data/dataset.yaml", cfg.Source.Path)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.Interval.Duration)
	assert.Equal(t, 20, cfg.Redis.PoolSize, "unparseable values are ignored")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "chatty"
	cfg.Source.Kind = "s3"
	cfg.Source.Key = ""
	cfg.S3.Bucket = ""
	cfg.Server.Port = 0
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "edge-lb"}
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`unknown log_level "chatty"`,
		"source: key is required",
		"s3: bucket must not be empty",
		"server: port must be 1-65535",
		`trusted_proxies entry "edge-lb"`,
		"telegram_token and telegram_chat_id",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateSourceKinds(t *testing.T) {
	cfg := Defaults()
	cfg.Source.Kind = "kafka"
	assert.ErrorContains(t, cfg.Validate(), `unknown kind "kafka"`)

	cfg = Defaults()
	cfg.Source.Kind = SourceFile
	assert.ErrorContains(t, cfg.Validate(), "path is required")

	cfg = Defaults()
	cfg.Export.Enabled = true
	assert.True(t, cfg.UsesS3())
	assert.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Supabase.Password = "pw"
	cfg.S3.SecretKey = "secret"
	cfg.Server.APIKey = "key"
	cfg.Redis.Password = ""

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Supabase.Password)
	assert.Equal(t, "***", out.S3.SecretKey)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Empty(t, out.Redis.Password)
	assert.Equal(t, "pw", cfg.Supabase.Password, "original untouched")

	out.Server.CORSOrigins[0] = "mutated"
	assert.NotEqual(t, "mutated", cfg.Server.CORSOrigins[0])
}
