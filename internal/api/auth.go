package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitkuhar/kitkuhar/backend/internal/middleware"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

// AuthHandler serves registration, login, the caller's own account and
// admin user management.
type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.AuthMiddleware(), h.GetMe)
		auth.PUT("/me", middleware.AuthMiddleware(), h.UpdateMe)

		users := auth.Group("/users", middleware.RequireAdmin())
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	// OAuth2-style form posts and JSON bodies are both accepted
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.CallerFrom(c).UserID()
	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req types.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, _ := middleware.CallerFrom(c).UserID()
	user, err := h.authService.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	users, err := h.authService.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req types.AdminCreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.CreateUser(c.Request.Context(), req.Email, req.Username, req.Password, req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actorID, _ := middleware.CallerFrom(c).UserID()
	if err := h.authService.DeleteUser(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Detail: "User deleted successfully"})
}
