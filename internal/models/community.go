package models

import (
	"time"
)

// Rating carries exactly one identity: UserID for account holders,
// SessionID for anonymous visitors. One row per (recipe, identity) is kept
// by the service, not by a constraint.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	SessionID *string   `gorm:"size:64;index" json:"-"`
}

type Comment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	RecipeID   uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe     *Recipe   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorName string    `gorm:"size:100;not null" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	SessionID  *string   `gorm:"size:64;index" json:"-"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Recipe{},
		&Rating{},
		&Comment{},
	}
}
