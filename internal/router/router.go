package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/api"
	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

// Options carries the collaborators the router needs besides the services
type Options struct {
	// Redis backs the rate limiters; nil disables them.
	Redis redis.Cmdable
	// StaticFS serves locally stored step media under StaticPrefix; nil when
	// media lives in object storage.
	StaticFS http.FileSystem
}

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(cfg *config.Config, db *gorm.DB, svc api.Services, opts Options) *gin.Engine {
	middleware.RegisterValidators()

	router := gin.New()
	router.MaxMultipartMemory = api.MaxMultipartMemory
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logging.Warn().Err(err).Msg("Ignoring invalid trusted proxy list")
	}

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.ResolveIdentity(identity.NewResolver(svc.Auth, svc.Auth)),
	)
	router.NoRoute(middleware.NotFound())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.StaticFS != nil {
		router.StaticFS(service.StaticPrefix, opts.StaticFS)
	}

	api.RegisterRoutes(router, db, svc, api.Limiters{
		Ratings:  middleware.NewRatingRateLimiter(opts.Redis, cfg.RateLimit, cfg.RateLimitWindow),
		Comments: middleware.NewCommentRateLimiter(opts.Redis, cfg.RateLimit, cfg.RateLimitWindow),
	})

	return router
}
