package goal

import (
	"time"

	"levelup/internal/progression"
)

// Template visibility for the catalogue.
const (
	VisibilityGlobal   = "global"
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
)

// UserGoal lifecycle.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// GoalTemplate defines a goal's default cadence and base XP. Global
// templates form the public catalogue; personal ones belong to their
// owner.
type GoalTemplate struct {
	ID          uint64  `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	Description *string `gorm:"type:text"`
	CategoryID  *uint64 `gorm:"index"`
	BaseXP      int     `gorm:"column:base_xp;not null;default:40"`

	OwnerUserID *uint64 `gorm:"index"`
	Visibility  string  `gorm:"size:16;not null;default:'global'"`

	FrequencyType     string `gorm:"size:20;not null;default:'daily'"`
	FrequencyInterval int    `gorm:"not null;default:1"`
	WeekStart         int    `gorm:"not null;default:1"` // 1=Monday
	MaxPerPeriod      int    `gorm:"not null;default:1"`

	Enabled   bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (GoalTemplate) TableName() string { return "goal_templates" }

// Cadence returns the template's default schedule.
func (t *GoalTemplate) Cadence() progression.Cadence {
	return progression.Cadence{
		Type:         progression.FrequencyType(t.FrequencyType),
		Interval:     t.FrequencyInterval,
		WeekStart:    t.WeekStart,
		MaxPerPeriod: t.MaxPerPeriod,
	}
}

// UserGoal is a user's subscription to a template. Nil override fields
// inherit the template value. Unique per (user, template).
type UserGoal struct {
	ID         uint64 `gorm:"primaryKey"`
	UserID     uint64 `gorm:"not null;index"`
	TemplateID uint64 `gorm:"not null"`
	Status     string `gorm:"size:16;not null;default:'active'"`

	FrequencyTypeOverride     *string `gorm:"size:20"`
	FrequencyIntervalOverride *int
	WeekStartOverride         *int
	MaxPerPeriodOverride      *int

	LastCompletedAt *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`

	Template GoalTemplate `gorm:"foreignKey:TemplateID"`
}

func (UserGoal) TableName() string { return "user_goals" }

// Override collects the per-user cadence settings for the resolver.
func (g *UserGoal) Override() progression.CadenceOverride {
	ov := progression.CadenceOverride{
		Interval:     g.FrequencyIntervalOverride,
		WeekStart:    g.WeekStartOverride,
		MaxPerPeriod: g.MaxPerPeriodOverride,
	}
	if g.FrequencyTypeOverride != nil {
		ft := progression.FrequencyType(*g.FrequencyTypeOverride)
		ov.Type = &ft
	}
	return ov
}

// EffectiveCadence merges this goal's overrides over its template.
func (g *UserGoal) EffectiveCadence() progression.Cadence {
	return progression.ResolveCadence(g.Template.Cadence(), g.Override())
}

// UserGoalCompletion is an append-only completion event. PeriodKey is
// informational only; gating always recounts against the live window.
type UserGoalCompletion struct {
	ID          uint64    `gorm:"primaryKey"`
	UserGoalID  uint64    `gorm:"not null;index"`
	CompletedAt time.Time `gorm:"not null;index"`
	XPAwarded   int       `gorm:"column:xp_awarded;not null"`
	PeriodKey   *string   `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (UserGoalCompletion) TableName() string { return "user_goal_completions" }
