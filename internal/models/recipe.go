package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

// Ingredients is a JSON column holding the ordered ingredient list
type Ingredients []types.Ingredient

// Value implements the driver.Valuer interface
func (a Ingredients) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *Ingredients) Scan(value interface{}) error {
	if value == nil {
		*a = Ingredients{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported ingredients column type %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is owned by its author; a nil AuthorID marks a system-owned recipe.
type Recipe struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Title       string      `gorm:"size:200;not null;index" json:"title"`
	Description *string     `gorm:"type:text" json:"description"`
	Ingredients Ingredients `gorm:"type:json;not null" json:"ingredients"`
	Steps       types.Steps `gorm:"type:json;not null" json:"steps"`
	Servings    int         `gorm:"not null" json:"servings"`
	CategoryID  uint        `gorm:"not null;index" json:"category_id"`
	Category    *Category   `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	AuthorID    *uint       `gorm:"index" json:"author_id"`
	Author      *User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
	Tags        []Tag       `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
}

// IsSystemOwned reports whether the recipe has no author.
func (r *Recipe) IsSystemOwned() bool {
	return r.AuthorID == nil
}
