package user

import "time"

// User carries the progression state: cumulative XP, the cached level
// derived from it, and the one-way onboarding flag.
type User struct {
	ID             uint64    `gorm:"primaryKey"`
	Username       string    `gorm:"size:40;index"`
	Email          string    `gorm:"uniqueIndex;not null"`
	PasswordHash   string    `gorm:"not null"`
	XP             int       `gorm:"column:xp;not null;default:0"`
	Level          int       `gorm:"not null;default:1"`
	OnboardingDone bool      `gorm:"not null;default:false"`
	IsAdmin        bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// UserPriority is the current preference score for one (user, category)
// pair, in [0,100]. One row per pair, overwritten on re-rank, never
// appended.
type UserPriority struct {
	ID         uint64    `gorm:"primaryKey"`
	UserID     uint64    `gorm:"not null;index"`
	CategoryID uint64    `gorm:"not null"`
	Score      float64   `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (UserPriority) TableName() string { return "user_priorities" }
