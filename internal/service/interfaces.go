package service

import (
	"context"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	CreateUser(ctx context.Context, email, username, password string, isAdmin bool) (*models.User, error)
	Login(ctx context.Context, username, password string) (*types.TokenResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateMe(ctx context.Context, userID uint, req types.UpdateMeRequest) (*models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, id uint, req types.AdminUpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
}

// ICategoryService defines the interface for category operations
type ICategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id uint, name string) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

// ITagService defines the interface for tag operations
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uint) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
	Update(ctx context.Context, id uint, name string) (*models.Tag, error)
	Delete(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, caller identity.Caller, req types.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, caller identity.Caller, id uint, req types.RecipeRequest) (*models.Recipe, error)
	Delete(ctx context.Context, caller identity.Caller, id uint) error
}

// IRatingService defines the interface for rating operations
type IRatingService interface {
	Upsert(ctx context.Context, caller identity.Caller, recipeID uint, value int) (*models.Rating, error)
	Stats(ctx context.Context, recipeID uint) (*types.RatingStats, error)
	CallerRating(ctx context.Context, caller identity.Caller, recipeID uint) (*int, error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	Create(ctx context.Context, caller identity.Caller, recipeID uint, authorName, content string) (*models.Comment, error)
	ListByRecipe(ctx context.Context, recipeID uint, skip, limit int) ([]models.Comment, error)
	Update(ctx context.Context, caller identity.Caller, id uint, content string) (*models.Comment, error)
	Delete(ctx context.Context, caller identity.Caller, id uint) error
}

// IMediaService defines the interface for step media operations
type IMediaService interface {
	Save(ctx context.Context, u Upload) (*types.MediaFile, error)
	SaveBatch(ctx context.Context, uploads []Upload) ([]types.MediaFile, error)
	Delete(ctx context.Context, filename string) error
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ ICategoryService = (*CategoryService)(nil)
	_ ITagService      = (*TagService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IRatingService   = (*RatingService)(nil)
	_ ICommentService  = (*CommentService)(nil)
	_ IMediaService    = (*MediaService)(nil)
	_ Store            = (*LocalStore)(nil)
	_ Store            = (*S3Store)(nil)
)
