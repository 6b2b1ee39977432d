package types

import (
	"time"
)

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string  `json:"name" binding:"required,notblank"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit"`
}

// Auth API types
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,notblank,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,notblank,min=3,max=50"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type AdminCreateUserRequest struct {
	RegisterRequest
	IsAdmin bool `json:"is_admin"`
}

type AdminUpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,notblank,min=3,max=50"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog API types, shared by categories and tags
type NameRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}

// Recipe API types
type RecipeRequest struct {
	Title       string       `json:"title" binding:"required,notblank,max=200"`
	Description *string      `json:"description"`
	Ingredients []Ingredient `json:"ingredients" binding:"required,min=1,dive"`
	Steps       Steps        `json:"steps"`
	Servings    int          `json:"servings" binding:"required,min=1"`
	CategoryID  uint         `json:"category_id" binding:"required"`
	Tags        []uint       `json:"tags"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RecipeResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Ingredients []Ingredient      `json:"ingredients"`
	Steps       Steps             `json:"steps"`
	Servings    int               `json:"servings"`
	CategoryID  uint              `json:"category_id"`
	Category    *CategoryResponse `json:"category"`
	Tags        []TagResponse     `json:"tags"`
	AuthorID    *uint             `json:"author_id"`
	AuthorName  *string           `json:"author_name"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Rating API types
type RatingRequest struct {
	RecipeID uint `json:"recipe_id" binding:"required"`
	Rating   int  `json:"rating" binding:"required,min=1,max=5"`
}

type RatingStats struct {
	AverageRating *float64 `json:"average_rating"`
	TotalRatings  int64    `json:"total_ratings"`
	TotalComments int64    `json:"total_comments"`
}

type CallerRating struct {
	Rating *int `json:"rating"`
}

// Comment API types
type CommentRequest struct {
	RecipeID   uint   `json:"recipe_id" binding:"required"`
	Content    string `json:"content" binding:"required,notblank,max=2000"`
	AuthorName string `json:"author_name" binding:"max=100"`
}

type CommentUpdateRequest struct {
	Content string `json:"content" form:"content" binding:"required,notblank,max=2000"`
}

// MediaFile describes one stored upload
type MediaFile struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	Type             string `json:"type"`
	URL              string `json:"url"`
	Size             int64  `json:"size"`
}

// MessageResponse is returned by endpoints without a resource body
type MessageResponse struct {
	Detail string `json:"detail"`
}
