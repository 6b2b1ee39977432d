package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks that the configuration is usable in its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "must not be empty"})
	} else if cfg.Environment.IsProduction() && cfg.JWTSecret == DefaultJWTSecret {
		errs = append(errs, ValidationError{"JWT_SECRET", "default secret is not allowed in production"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "postgres requires DB_HOST and DB_NAME"})
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "must not be empty"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	switch cfg.MediaBackend {
	case MediaLocal:
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "must not be empty"})
		}
	case MediaS3:
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "required for the s3 media backend"})
		}
	default:
		errs = append(errs, ValidationError{"MEDIA_BACKEND", fmt.Sprintf("unknown backend %q", cfg.MediaBackend)})
	}

	if cfg.RedisEnabled && cfg.RateLimit <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT", "must be positive when redis is enabled"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
