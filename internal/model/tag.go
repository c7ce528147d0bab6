package model

import "time"

// Tag is a secondary label scoped to exactly one category. Names are
// unique case-insensitively within their category.
type Tag struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID uint   `gorm:"not null;uniqueIndex:idx_category_tag_name"`
	Name       string `gorm:"type:TEXT COLLATE NOCASE;not null;uniqueIndex:idx_category_tag_name"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
