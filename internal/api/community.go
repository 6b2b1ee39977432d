package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

// RatingHandler serves star ratings for both account holders and anonymous visitors
type RatingHandler struct {
	ratings service.IRatingService
	limiter *middleware.RateLimiter
}

func NewRatingHandler(ratings service.IRatingService, limiter *middleware.RateLimiter) *RatingHandler {
	return &RatingHandler{ratings: ratings, limiter: limiter}
}

func (h *RatingHandler) RegisterRoutes(router *gin.RouterGroup) {
	ratings := router.Group("/ratings")
	{
		ratings.POST("", h.limiter.RateLimitMiddleware(), h.Rate)
		ratings.GET("/:id/stats", h.Stats)
		ratings.GET("/:id/user-rating", h.CallerRating)
	}
}

func (h *RatingHandler) Rate(c *gin.Context) {
	var req types.RatingRequest
	if !bindJSON(c, &req) {
		return
	}
	rating, err := h.ratings.Upsert(c.Request.Context(), middleware.CallerFrom(c), req.RecipeID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.ratings.Stats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RatingHandler) CallerRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rating, err := h.ratings.CallerRating(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.CallerRating{Rating: rating})
}

// CommentHandler serves recipe comments. Edits and deletes are limited to
// the identity that wrote the comment.
type CommentHandler struct {
	comments service.ICommentService
	limiter  *middleware.RateLimiter
}

func NewCommentHandler(comments service.ICommentService, limiter *middleware.RateLimiter) *CommentHandler {
	return &CommentHandler{comments: comments, limiter: limiter}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/comments")
	{
		comments.POST("", h.limiter.RateLimitMiddleware(), h.Create)
		comments.GET("/:id", h.ListByRecipe)
		comments.PUT("/:id", h.Update)
		comments.DELETE("/:id", h.Delete)
	}
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), middleware.CallerFrom(c), req.RecipeID, req.AuthorName, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListByRecipe takes a recipe id, not a comment id
func (h *CommentHandler) ListByRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	comments, err := h.comments.ListByRecipe(c.Request.Context(), recipeID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Update reads the new content from a JSON body or, failing that, the
// content query parameter.
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	content := c.Query("content")
	if strings.TrimSpace(content) == "" {
		var req types.CommentUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		content = req.Content
	}

	comment, err := h.comments.Update(c.Request.Context(), middleware.CallerFrom(c), id, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Detail: "Comment deleted"})
}
