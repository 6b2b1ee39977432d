package api

import (
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

func newUserResponse(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func newUserResponses(users []models.User) []types.UserResponse {
	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return out
}

func newCategoryResponse(c *models.Category) types.CategoryResponse {
	return types.CategoryResponse{ID: c.ID, Name: c.Name}
}

func newTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name}
}

// newRecipeResponse expects Category, Tags and Author to be preloaded
func newRecipeResponse(r *models.Recipe) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Ingredients: []types.Ingredient(r.Ingredients),
		Steps:       r.Steps,
		Servings:    r.Servings,
		CategoryID:  r.CategoryID,
		Tags:        make([]types.TagResponse, 0, len(r.Tags)),
		AuthorID:    r.AuthorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []types.Ingredient{}
	}
	if r.Category != nil {
		category := newCategoryResponse(r.Category)
		resp.Category = &category
	}
	for i := range r.Tags {
		resp.Tags = append(resp.Tags, newTagResponse(&r.Tags[i]))
	}
	if r.Author != nil {
		name := r.Author.Username
		resp.AuthorName = &name
	}
	return resp
}

func newRecipeResponses(recipes []models.Recipe) []types.RecipeResponse {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeResponse(&recipes[i]))
	}
	return out
}

// UploadResponse is returned by the single-file upload endpoint
type UploadResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	File    types.MediaFile `json:"file"`
}

// BatchUploadResponse is returned by the multi-file upload endpoint
type BatchUploadResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Files   []types.MediaFile `json:"files"`
}

// HealthResponse reports liveness and database reachability
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}
