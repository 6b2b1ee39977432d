package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/metrics"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Upsert creates the caller's rating for a recipe or overwrites the existing
// one. The lookup and the write are not guarded by a lock or a unique index,
// so two concurrent first ratings from one identity can both insert.
func (s *RatingService) Upsert(ctx context.Context, caller identity.Caller, recipeID uint, value int) (*models.Rating, error) {
	if value < MinRating || value > MaxRating {
		return nil, invalidInput("rating must be between %d and %d", MinRating, MaxRating)
	}

	var rating models.Rating
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipe(tx, recipeID); err != nil {
			return err
		}

		err := byCaller(tx, caller).Where("recipe_id = ?", recipeID).First(&rating).Error
		switch {
		case err == nil:
			rating.Rating = value
			return tx.Model(&rating).Update("rating", value).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = models.Rating{RecipeID: recipeID, Rating: value}
			setOwner(caller, &rating.UserID, &rating.SessionID)
			created = true
			return tx.Create(&rating).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.RatingsSubmitted.WithLabelValues(caller.Kind().String(), result).Inc()
	logging.Ctx(ctx).Info().Uint("recipe_id", recipeID).Int("rating", value).Str("caller", caller.Kind().String()).Str("result", result).Msg("rating saved")
	return &rating, nil
}

// Stats summarises a recipe's ratings and comments. The average is nil when
// there are no ratings and is otherwise rounded to two decimals.
func (s *RatingService) Stats(ctx context.Context, recipeID uint) (*types.RatingStats, error) {
	db := s.db.WithContext(ctx)
	if err := ensureRecipe(db, recipeID); err != nil {
		return nil, err
	}

	var agg struct {
		Average *float64
		Total   int64
	}
	err := db.Model(&models.Rating{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("recipe_id = ?", recipeID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	var comments int64
	if err := db.Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	stats := &types.RatingStats{TotalRatings: agg.Total, TotalComments: comments}
	if agg.Total > 0 && agg.Average != nil {
		avg := math.Round(*agg.Average*100) / 100
		stats.AverageRating = &avg
	}
	return stats, nil
}

// CallerRating returns the caller's rating for a recipe, or nil.
func (s *RatingService) CallerRating(ctx context.Context, caller identity.Caller, recipeID uint) (*int, error) {
	var rating models.Rating
	err := byCaller(s.db.WithContext(ctx), caller).Where("recipe_id = ?", recipeID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}
	return &rating.Rating, nil
}

func ensureRecipe(db *gorm.DB, recipeID uint) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check recipe: %w", err)
	}
	if count == 0 {
		return notFound("recipe not found")
	}
	return nil
}

// byCaller scopes a query to rows owned by the caller's identity
func byCaller(db *gorm.DB, caller identity.Caller) *gorm.DB {
	if userID, ok := caller.UserID(); ok {
		return db.Where("user_id = ?", userID)
	}
	token, _ := caller.SessionToken()
	return db.Where("session_id = ?", token)
}

// setOwner fills exactly one identity column
func setOwner(caller identity.Caller, userID **uint, sessionID **string) {
	if id, ok := caller.UserID(); ok {
		*userID = &id
		return
	}
	token, _ := caller.SessionToken()
	*sessionID = &token
}
