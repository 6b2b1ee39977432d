package models

// Category groups recipes; every recipe belongs to exactly one.
type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Tag is shared reference data attached to recipes through recipe_tags.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
