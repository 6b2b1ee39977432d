package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/api"
	"github.com/kitkuhar/kitkuhar/backend/internal/database"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/router"
	"github.com/kitkuhar/kitkuhar/backend/internal/server"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	format := cfg.LogFormat
	if format == "" && cfg.Environment.IsDevelopment() {
		format = "console"
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: format})
	logging.Info().Str("environment", string(cfg.Environment)).Msg("Configuration loaded")

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Without redis the rate limiters let everything through
	var limiterStore redis.Cmdable
	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			logging.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
		} else {
			defer client.Close()
			limiterStore = client
		}
	}

	store, staticFS, err := newMediaStore(context.Background(), cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialise media storage")
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	engine := router.SetupRouter(cfg, db, api.NewServices(db, auth, store), router.Options{
		Redis:    limiterStore,
		StaticFS: staticFS,
	})

	srv := server.New(cfg, engine)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Error().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down server")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logging.Error().Err(err).Msg("Server shutdown error")
	}
	logging.Info().Msg("Server stopped")
}

// newMediaStore picks the configured backend. Local media is also returned
// as a filesystem for the static route.
func newMediaStore(ctx context.Context, cfg *config.Config) (service.Store, http.FileSystem, error) {
	if cfg.MediaBackend == config.MediaS3 {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("bucket", s3cfg.BucketName).Msg("Storing media in S3")
		return service.NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.ObjectURL), nil, nil
	}

	local, err := service.NewLocalStore(afero.NewOsFs(), cfg.MediaRoot)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("root", cfg.MediaRoot).Msg("Storing media on local disk")
	return local, afero.NewHttpFs(local.Fs()), nil
}
