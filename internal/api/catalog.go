package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

// CategoryHandler exposes categories; writes are admin-only
type CategoryHandler struct {
	categories service.ICategoryService
}

func NewCategoryHandler(categories service.ICategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.List)
		categories.GET("/:id", h.Get)
		categories.POST("", middleware.RequireAdmin(), h.Create)
		categories.PUT("/:id", middleware.RequireAdmin(), h.Update)
		categories.DELETE("/:id", middleware.RequireAdmin(), h.Delete)
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]types.CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, newCategoryResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Detail: "Category deleted"})
}

// TagHandler exposes tags; writes are admin-only
type TagHandler struct {
	tags service.ITagService
}

func NewTagHandler(tags service.ITagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.List)
		tags.GET("/:id", h.Get)
		tags.POST("", middleware.RequireAdmin(), h.Create)
		tags.PUT("/:id", middleware.RequireAdmin(), h.Update)
		tags.DELETE("/:id", middleware.RequireAdmin(), h.Delete)
	}
}

func (h *TagHandler) List(c *gin.Context) {
	list, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagResponses(list))
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) Create(c *gin.Context) {
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTagResponse(tag))
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Detail: "Tag deleted"})
}

func tagResponses(list []models.Tag) []types.TagResponse {
	out := make([]types.TagResponse, 0, len(list))
	for i := range list {
		out = append(out, newTagResponse(&list[i]))
	}
	return out
}
