package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/metrics"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
)

const (
	DefaultCommentLimit = 50
	MaxCommentLimit     = 200
	MaxCommentLength    = 2000
	MaxAuthorNameLength = 100
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create adds a comment. Account holders comment under their username;
// anonymous visitors supply a display name and are tagged with their session token.
func (s *CommentService) Create(ctx context.Context, caller identity.Caller, recipeID uint, authorName, content string) (*models.Comment, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{RecipeID: recipeID, Content: content}
	if caller.IsAuthenticated() {
		comment.AuthorName = caller.Username()
	} else {
		authorName = strings.TrimSpace(authorName)
		if authorName == "" {
			return nil, invalidInput("author_name is required for anonymous comments")
		}
		if utf8.RuneCountInString(authorName) > MaxAuthorNameLength {
			return nil, invalidInput("author_name must be at most %d characters", MaxAuthorNameLength)
		}
		comment.AuthorName = authorName
	}
	setOwner(caller, &comment.UserID, &comment.SessionID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipe(tx, recipeID); err != nil {
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.CommentsCreated.WithLabelValues(caller.Kind().String()).Inc()
	logging.Ctx(ctx).Info().Uint("comment_id", comment.ID).Uint("recipe_id", recipeID).Str("caller", caller.Kind().String()).Msg("comment created")
	return &comment, nil
}

// ListByRecipe returns a page of comments, newest first
func (s *CommentService) ListByRecipe(ctx context.Context, recipeID uint, skip, limit int) ([]models.Comment, error) {
	skip, limit = pageBounds(skip, limit, DefaultCommentLimit, MaxCommentLimit)

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Update edits a comment owned by the caller. A missing comment and a
// comment owned by someone else are reported the same way.
func (s *CommentService) Update(ctx context.Context, caller identity.Caller, id uint, content string) (*models.Comment, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.owned(tx, caller, id, &comment, "edit"); err != nil {
			return err
		}
		comment.Content = content
		return tx.Model(&comment).Update("content", content).Error
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("comment_id", id).Msg("comment updated")
	return &comment, nil
}

// Delete removes a comment owned by the caller, with the same reporting as Update.
func (s *CommentService) Delete(ctx context.Context, caller identity.Caller, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := s.owned(tx, caller, id, &comment, "delete"); err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Uint("comment_id", id).Msg("comment deleted")
	return nil
}

func (s *CommentService) owned(tx *gorm.DB, caller identity.Caller, id uint, comment *models.Comment, action string) error {
	err := byCaller(tx, caller).Where("id = ?", id).First(comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("comment not found or no permission to %s", action)
	}
	return err
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalidInput("content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", invalidInput("content must be at most %d characters", MaxCommentLength)
	}
	return content, nil
}
