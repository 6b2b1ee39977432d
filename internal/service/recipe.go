package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

const (
	DefaultRecipeLimit = 10
	MaxRecipeLimit     = 100
)

// RecipeFilter narrows a recipe listing
type RecipeFilter struct {
	Skip       int
	Limit      int
	Search     string
	CategoryID uint
	TagIDs     []uint
}

type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// List returns recipes ordered by id. TagIDs match recipes carrying any of the tags.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	skip, limit := pageBounds(filter.Skip, filter.Limit, DefaultRecipeLimit, MaxRecipeLimit)

	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where("id IN (?)",
			s.db.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}

	var recipes []models.Recipe
	err := query.
		Preload("Category").
		Preload("Tags").
		Preload("Author").
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.load(s.db.WithContext(ctx), id)
}

// Create stores a recipe authored by the calling account
func (s *RecipeService) Create(ctx context.Context, caller identity.Caller, req types.RecipeRequest) (*models.Recipe, error) {
	authorID, ok := caller.UserID()
	if !ok {
		return nil, unauthorized("authentication required")
	}

	var created *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.validate(tx, req)
		if err != nil {
			return err
		}

		recipe := models.Recipe{AuthorID: &authorID}
		applyRecipeRequest(&recipe, req)
		if err := tx.Omit("Tags").Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if len(tags) > 0 {
			if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
				return fmt.Errorf("failed to tag recipe: %w", err)
			}
		}

		created, err = s.load(tx, recipe.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", created.ID).Uint("author_id", authorID).Msg("recipe created")
	return created, nil
}

// Update replaces a recipe's content. Authors may edit their own recipes;
// admins may edit any, including system-owned ones.
func (s *RecipeService) Update(ctx context.Context, caller identity.Caller, id uint, req types.RecipeRequest) (*models.Recipe, error) {
	var updated *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := authorize(caller, recipe); err != nil {
			return err
		}
		tags, err := s.validate(tx, req)
		if err != nil {
			return err
		}

		err = tx.Model(&models.Recipe{ID: id}).Updates(map[string]interface{}{
			"title":       strings.TrimSpace(req.Title),
			"description": req.Description,
			"ingredients": models.Ingredients(req.Ingredients),
			"steps":       req.Steps,
			"servings":    req.Servings,
			"category_id": req.CategoryID,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		association := tx.Model(recipe).Association("Tags")
		if len(tags) > 0 {
			err = association.Replace(tags)
		} else {
			err = association.Clear()
		}
		if err != nil {
			return fmt.Errorf("failed to update recipe tags: %w", err)
		}

		updated, err = s.load(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", id).Str("caller", caller.Key()).Msg("recipe updated")
	return updated, nil
}

// Delete removes the recipe with its ratings, comments and tag links.
// The category and the tags themselves remain.
func (s *RecipeService) Delete(ctx context.Context, caller identity.Caller, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			return recordNotFound(err, "recipe")
		}
		if err := authorize(caller, &recipe); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", id).Str("caller", caller.Key()).Msg("recipe deleted")
	return nil
}

func (s *RecipeService) load(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.Preload("Category").Preload("Tags").Preload("Author").First(&recipe, id).Error
	if err != nil {
		return nil, recordNotFound(err, "recipe")
	}
	return &recipe, nil
}

// validate checks references and content, returning the tags to attach
func (s *RecipeService) validate(tx *gorm.DB, req types.RecipeRequest) ([]models.Tag, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalidInput("title must not be empty")
	}
	if req.Servings < 1 {
		return nil, invalidInput("servings must be at least 1")
	}
	if len(req.Ingredients) == 0 {
		return nil, invalidInput("at least one ingredient is required")
	}
	for i, ing := range req.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return nil, invalidInput("ingredient %d has no name", i+1)
		}
		if ing.Quantity < 0 {
			return nil, invalidInput("ingredient %d has a negative quantity", i+1)
		}
	}
	if err := req.Steps.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	var categories int64
	if err := tx.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&categories).Error; err != nil {
		return nil, err
	}
	if categories == 0 {
		return nil, invalidInput("category %d does not exist", req.CategoryID)
	}

	ids := uniqueIDs(req.Tags)
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, invalidInput("unknown tag id in %v", ids)
	}
	return tags, nil
}

func authorize(caller identity.Caller, recipe *models.Recipe) error {
	if caller.IsAdmin() {
		return nil
	}
	userID, ok := caller.UserID()
	if !ok {
		return unauthorized("authentication required")
	}
	if recipe.IsSystemOwned() || *recipe.AuthorID != userID {
		return forbidden("you can only modify your own recipes")
	}
	return nil
}

func applyRecipeRequest(recipe *models.Recipe, req types.RecipeRequest) {
	recipe.Title = strings.TrimSpace(req.Title)
	recipe.Description = req.Description
	recipe.Ingredients = models.Ingredients(req.Ingredients)
	recipe.Steps = req.Steps
	recipe.Servings = req.Servings
	recipe.CategoryID = req.CategoryID
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// pageBounds applies defaults and ceilings to skip/limit query values
func pageBounds(skip, limit, def, max int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return skip, limit
}
