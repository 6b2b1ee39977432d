package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/database"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

// Services bundles everything the HTTP layer calls into
type Services struct {
	Auth       service.IAuthService
	Categories service.ICategoryService
	Tags       service.ITagService
	Recipes    service.IRecipeService
	Ratings    service.IRatingService
	Comments   service.ICommentService
	Media      service.IMediaService
}

// NewServices wires the database backed services and the media store
func NewServices(db *gorm.DB, auth *service.AuthService, store service.Store) Services {
	return Services{
		Auth:       auth,
		Categories: service.NewCategoryService(db),
		Tags:       service.NewTagService(db),
		Recipes:    service.NewRecipeService(db),
		Ratings:    service.NewRatingService(db),
		Comments:   service.NewCommentService(db),
		Media:      service.NewMediaService(store),
	}
}

// Limiters guard the write endpoints anonymous visitors can reach
type Limiters struct {
	Ratings  *middleware.RateLimiter
	Comments *middleware.RateLimiter
}

// HealthHandler reports liveness along with database reachability
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "ok", Version: Version}
	if err := database.HealthCheck(ctx, h.db); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Health check could not reach the database")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, svc Services, limiters Limiters) {
	health := NewHealthHandler(db)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	NewAuthHandler(svc.Auth).RegisterRoutes(v1)
	NewCategoryHandler(svc.Categories).RegisterRoutes(v1)
	NewTagHandler(svc.Tags).RegisterRoutes(v1)
	NewRecipeHandler(svc.Recipes).RegisterRoutes(v1)
	NewRatingHandler(svc.Ratings, limiters.Ratings).RegisterRoutes(v1)
	NewCommentHandler(svc.Comments, limiters.Comments).RegisterRoutes(v1)
	NewMediaHandler(svc.Media).RegisterRoutes(v1)
}
