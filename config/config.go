package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MediaLocal = "local"
	MediaS3    = "s3"

	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "kitkuhar-dev-secret-change-me"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	// Server configuration
	ServerHost     string   `mapstructure:"SERVER_HOST"`
	ServerPort     string   `mapstructure:"SERVER_PORT"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Database configuration
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Redis configuration, used for rate limiting only
	RedisEnabled  bool   `mapstructure:"REDIS_ENABLED"`
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisURL      string `mapstructure:"REDIS_URL"`

	RateLimit       int           `mapstructure:"RATE_LIMIT"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	// JWT configuration
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	// Media storage
	MediaBackend string `mapstructure:"MEDIA_BACKEND"`
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`
	S3Bucket     string `mapstructure:"S3_BUCKET_NAME"`
	S3Region     string `mapstructure:"AWS_REGION"`
	S3Endpoint   string `mapstructure:"S3_ENDPOINT"`
	S3PublicURL  string `mapstructure:"S3_PUBLIC_URL"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]interface{}{
	"SERVER_HOST":       "0.0.0.0",
	"SERVER_PORT":       "8000",
	"CORS_ORIGINS":      []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	"TRUSTED_PROXIES":   []string{},
	"DB_DRIVER":         DriverPostgres,
	"DB_HOST":           "localhost",
	"DB_PORT":           "5432",
	"DB_USER":           "postgres",
	"DB_PASSWORD":       "",
	"DB_NAME":           "kitkuhar",
	"DB_SSL_MODE":       "disable",
	"SQLITE_PATH":       "kitkuhar.db",
	"REDIS_ENABLED":     false,
	"REDIS_HOST":        "localhost",
	"REDIS_PORT":        "6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"REDIS_URL":         "",
	"RATE_LIMIT":        30,
	"RATE_LIMIT_WINDOW": time.Minute,
	"JWT_SECRET":        DefaultJWTSecret,
	"TOKEN_TTL":         30 * 24 * time.Hour,
	"MEDIA_BACKEND":     MediaLocal,
	"MEDIA_ROOT":        "media",
	"S3_BUCKET_NAME":    "",
	"AWS_REGION":        "",
	"S3_ENDPOINT":       "",
	"S3_PUBLIC_URL":     "",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "",
}

// secretKeys can be overridden by Docker secrets found in SECRETS_DIR
var secretKeys = map[string]string{
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
}

// LoadConfig builds the configuration from defaults, an optional config file,
// environment variables and Docker secrets, in that order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for name, key := range secretKeys {
		if secret := readSecret(name); secret != "" {
			v.Set(key, secret)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	cfg.TrustedProxies = splitList(cfg.TrustedProxies)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// splitList flattens comma separated entries and drops blanks. Values coming
// from a single environment variable arrive as one element.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
