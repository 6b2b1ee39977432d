package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
)

// CategoryService manages the category list. Writes are admin-only at the route level.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, recordNotFound(err, "category")
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ensureNameFree(ctx, s.db, &models.Category{}, 0, name, "category"); err != nil {
		return nil, err
	}

	category := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, translateWriteError(err, "category")
	}
	logging.Ctx(ctx).Info().Uint("category_id", category.ID).Str("name", name).Msg("category created")
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, name string) (*models.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureNameFree(ctx, s.db, &models.Category{}, id, name, "category"); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(category).Update("name", name).Error; err != nil {
		return nil, translateWriteError(err, "category")
	}
	return category, nil
}

// Delete refuses while any recipe still uses the category
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return recordNotFound(err, "category")
		}
		var inUse int64
		if err := tx.Model(&models.Recipe{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return conflict("category is used by %d recipe(s)", inUse)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Uint("category_id", id).Msg("category deleted")
		return nil
	})
}

// TagService manages shared tags
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, recordNotFound(err, "tag")
	}
	return &tag, nil
}

func (s *TagService) Create(ctx context.Context, name string) (*models.Tag, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ensureNameFree(ctx, s.db, &models.Tag{}, 0, name, "tag"); err != nil {
		return nil, err
	}

	tag := models.Tag{Name: name}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, translateWriteError(err, "tag")
	}
	logging.Ctx(ctx).Info().Uint("tag_id", tag.ID).Str("name", name).Msg("tag created")
	return &tag, nil
}

func (s *TagService) Update(ctx context.Context, id uint, name string) (*models.Tag, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureNameFree(ctx, s.db, &models.Tag{}, id, name, "tag"); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(tag).Update("name", name).Error; err != nil {
		return nil, translateWriteError(err, "tag")
	}
	return tag, nil
}

// Delete removes the tag and its recipe links; the recipes stay.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return recordNotFound(err, "tag")
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Uint("tag_id", id).Msg("tag deleted")
		return nil
	})
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("name must not be empty")
	}
	if len([]rune(name)) > 100 {
		return "", invalidInput("name must be at most 100 characters")
	}
	return name, nil
}

// ensureNameFree rejects a name already used by another row of the same table
func ensureNameFree(ctx context.Context, db *gorm.DB, model interface{}, selfID uint, name, what string) error {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("name = ? AND id <> ?", name, selfID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s name: %w", what, err)
	}
	if count > 0 {
		return conflict("%s %q already exists", what, name)
	}
	return nil
}

func translateWriteError(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict("%s already exists", what)
	}
	return fmt.Errorf("failed to save %s: %w", what, err)
}
