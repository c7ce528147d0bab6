package model

import "time"

// Category is the top-level label for activities (work, health, study, etc.).
// Names are unique case-insensitively; Color is an optional #RRGGBB display hint.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:TEXT COLLATE NOCASE;not null;uniqueIndex"`
	Color     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []Tag `gorm:"foreignKey:CategoryID"`
}
