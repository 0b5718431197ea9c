package category

import "time"

// Category is a static reference row (Sport, Mindset, ...).
type Category struct {
	ID        uint64    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Category) TableName() string { return "categories" }
