package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookups at empty directories so local files do not leak in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CONFIG_PATH", dir)
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	return dir
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "kitkuhar", cfg.DBName)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, MediaLocal, cfg.MediaBackend)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoadConfigFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/kitkuhar-test.db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/kitkuhar-test.db", cfg.SQLitePath)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 5, cfg.RateLimit)
}

func TestLoadConfigSecretsOverrideEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JWT_SECRET", "env-secret")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("file-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("dbpass"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "dbpass", cfg.DBPassword)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	content := "SERVER_PORT: \"9090\"\nMEDIA_ROOT: /srv/media\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Setenv("MEDIA_ROOT", "/env/media")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "/env/media", cfg.MediaRoot, "environment wins over the config file")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:  Development,
			DBDriver:     DriverSQLite,
			SQLitePath:   ":memory:",
			JWTSecret:    "secret",
			TokenTTL:     time.Hour,
			MediaBackend: MediaLocal,
			MediaRoot:    "media",
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"default secret in production", func(c *Config) {
			c.Environment = Production
			c.JWTSecret = DefaultJWTSecret
		}, "JWT_SECRET"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"unknown media backend", func(c *Config) { c.MediaBackend = "ftp" }, "MEDIA_BACKEND"},
		{"s3 without bucket", func(c *Config) { c.MediaBackend = MediaS3 }, "S3_BUCKET_NAME"},
		{"redis without limit", func(c *Config) { c.RedisEnabled = true }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := ValidateConfig(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Production, ParseEnvironment("PROD"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("staging"))
}
