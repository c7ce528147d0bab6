package model

import "time"

// Activity is a logged half-open time interval [StartTime, EndTime) with
// one category, any number of tags, and optional notes. No two activities
// may overlap; touching endpoints are allowed.
type Activity struct {
	ID         uint      `gorm:"primaryKey"`
	StartTime  time.Time `gorm:"not null;index"`
	EndTime    time.Time `gorm:"not null"`
	CategoryID uint      `gorm:"not null;index"`
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Category   Category `gorm:"foreignKey:CategoryID"`
	Tags       []Tag    `gorm:"many2many:activity_tags"`
}

// DurationMinutes is the interval length in whole minutes. Duration is
// always derived from the stored bounds, never stored itself; sub-minute
// remainders are truncated.
func (a Activity) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime).Minutes())
}
