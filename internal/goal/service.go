package goal

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"levelup/internal/progression"
	"levelup/internal/user"
)

var (
	ErrNotFound         = errors.New("user goal not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrQuotaMet         = errors.New("already completed for the current period")
	ErrArchived         = errors.New("goal is archived")
	ErrNotArchived      = errors.New("goal is not archived")
	ErrInvalidCadence   = errors.New("invalid cadence")
	ErrForbidden        = errors.New("not allowed")
)

type Service struct {
	DB *gorm.DB
}

// cadencePreset returns the override set stored for the daily|weekly
// shortcuts the client can pick when subscribing.
func cadencePreset(cadence string) (ft string, interval int, weekStart *int, maxPer int, ok bool) {
	switch cadence {
	case "daily":
		return "daily", 1, nil, 1, true
	case "weekly":
		ws := 1 // Monday
		return "weekly", 1, &ws, 1, true
	}
	return "", 0, nil, 0, false
}

func (s *Service) countInWindow(tx *gorm.DB, userGoalID uint64, p progression.Period) (int64, error) {
	var n int64
	err := tx.Model(&UserGoalCompletion{}).
		Where("user_goal_id = ? AND completed_at >= ? AND completed_at < ?", userGoalID, p.Start, p.End).
		Count(&n).Error
	return n, err
}

// xpMultiplier picks the priority bonus for a goal's category: the
// user's top-ranked category gets 1.5, the second 1.25, everything
// else 1.0.
func (s *Service) xpMultiplier(tx *gorm.DB, userID uint64, categoryID *uint64) (float64, error) {
	if categoryID == nil {
		return 1.0, nil
	}
	var prefs []user.UserPriority
	if err := tx.Where("user_id = ?", userID).Order("score desc").Find(&prefs).Error; err != nil {
		return 0, err
	}
	if len(prefs) == 0 {
		return 1.0, nil
	}
	if prefs[0].CategoryID == *categoryID {
		return 1.5, nil
	}
	if len(prefs) > 1 && prefs[1].CategoryID == *categoryID {
		return 1.25, nil
	}
	return 1.0, nil
}

// CompleteResult reports one successful completion.
type CompleteResult struct {
	Awarded        int                      `json:"awarded"`
	NewXP          int                      `json:"new_xp"`
	NewLevel       int                      `json:"new_level"`
	XPProgress     progression.ProgressInfo `json:"xp_progress"`
	NextEligibleAt time.Time                `json:"next_eligible_at"`
}

// Complete records a completion for an active goal, gated by the
// current period's quota, and applies the XP award to the user.
//
// The whole sequence runs in one transaction with row locks on the
// user goal and the user, so two concurrent attempts serialize: the
// second one re-counts after the first commits and hits the quota.
func (s *Service) Complete(ctx context.Context, userID, userGoalID uint64, now time.Time) (*CompleteResult, error) {
	var res *CompleteResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g UserGoal
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ? AND status = ?", userGoalID, userID, StatusActive).
			First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&g.Template, g.TemplateID).Error; err != nil {
			return err
		}

		eff := g.EffectiveCadence()
		window := progression.Window(now, eff)

		n, err := s.countInWindow(tx, g.ID, window)
		if err != nil {
			return err
		}
		if n >= int64(eff.MaxPerPeriod) {
			return ErrQuotaMet
		}

		mult, err := s.xpMultiplier(tx, userID, g.Template.CategoryID)
		if err != nil {
			return err
		}
		awarded := int(math.Round(float64(g.Template.BaseXP) * mult))

		var periodKey *string
		if k := progression.PeriodKey(now, eff.Type); k != "" {
			periodKey = &k
		}
		completion := UserGoalCompletion{
			UserGoalID:  g.ID,
			CompletedAt: now,
			XPAwarded:   awarded,
			PeriodKey:   periodKey,
			CreatedAt:   now,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		if err := tx.Model(&g).Updates(map[string]any{
			"last_completed_at": now,
			"updated_at":        now,
		}).Error; err != nil {
			return err
		}

		var u user.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&u, userID).Error; err != nil {
			return err
		}
		newXP := u.XP + awarded
		prog := progression.Progress(newXP)
		if err := tx.Model(&u).Updates(map[string]any{
			"xp":    newXP,
			"level": prog.Level,
		}).Error; err != nil {
			return err
		}

		res = &CompleteResult{
			Awarded:        awarded,
			NewXP:          newXP,
			NewLevel:       prog.Level,
			XPProgress:     prog,
			NextEligibleAt: window.End,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GoalView is the list payload: stored overrides, the cadence actually
// applied, and the lazily recomputed window state.
type GoalView struct {
	ID     uint64 `json:"id"`
	UserID uint64 `json:"user_id"`
	Status string `json:"status"`

	TemplateID uint64  `json:"template_id"`
	Title      string  `json:"title"`
	CategoryID *uint64 `json:"category_id"`
	BaseXP     int     `json:"base_xp"`

	FrequencyTypeOverride     *string `json:"frequency_type_override"`
	FrequencyIntervalOverride *int    `json:"frequency_interval_override"`
	WeekStartOverride         *int    `json:"week_start_override"`
	MaxPerPeriodOverride      *int    `json:"max_per_period_override"`

	EffectiveFrequencyType     string `json:"effective_frequency_type"`
	EffectiveFrequencyInterval int    `json:"effective_frequency_interval"`
	EffectiveWeekStart         int    `json:"effective_week_start"`
	EffectiveMaxPerPeriod      int    `json:"effective_max_per_period"`

	LastCompletedAt     *time.Time `json:"last_completed_at"`
	CompletionsInPeriod int64      `json:"completions_in_period"`
	CanComplete         bool       `json:"can_complete"`
	PeriodStart         time.Time  `json:"period_start"`
	PeriodEnd           time.Time  `json:"period_end"`
}

// ListUserGoals returns a user's goals with their current window state.
// status filters on active|archived; anything else lists everything.
func (s *Service) ListUserGoals(ctx context.Context, userID uint64, status string, now time.Time) ([]GoalView, error) {
	q := s.DB.WithContext(ctx).Preload("Template").Where("user_id = ?", userID)
	if status == StatusActive || status == StatusArchived {
		q = q.Where("status = ?", status)
	}

	var rows []UserGoal
	if err := q.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]GoalView, 0, len(rows))
	for i := range rows {
		g := &rows[i]
		eff := g.EffectiveCadence()
		window := progression.Window(now, eff)

		n, err := s.countInWindow(s.DB.WithContext(ctx), g.ID, window)
		if err != nil {
			return nil, err
		}

		out = append(out, GoalView{
			ID:                        g.ID,
			UserID:                    g.UserID,
			Status:                    g.Status,
			TemplateID:                g.Template.ID,
			Title:                     g.Template.Title,
			CategoryID:                g.Template.CategoryID,
			BaseXP:                    g.Template.BaseXP,
			FrequencyTypeOverride:     g.FrequencyTypeOverride,
			FrequencyIntervalOverride: g.FrequencyIntervalOverride,
			WeekStartOverride:         g.WeekStartOverride,
			MaxPerPeriodOverride:      g.MaxPerPeriodOverride,
			EffectiveFrequencyType:    string(eff.Type),
			EffectiveFrequencyInterval: eff.Interval,
			EffectiveWeekStart:         eff.WeekStart,
			EffectiveMaxPerPeriod:      eff.MaxPerPeriod,
			LastCompletedAt:            g.LastCompletedAt,
			CompletionsInPeriod:        n,
			CanComplete:                n < int64(eff.MaxPerPeriod),
			PeriodStart:                window.Start,
			PeriodEnd:                  window.End,
		})
	}
	return out, nil
}

type AddResult struct {
	ID          uint64 `json:"id"`
	Created     bool   `json:"created"`
	Reactivated bool   `json:"reactivated"`
}

// AddUserGoal subscribes a user to a template with a daily|weekly
// cadence preset. An archived subscription is reactivated in place;
// an active one is left untouched.
func (s *Service) AddUserGoal(ctx context.Context, userID, templateID uint64, cadence string) (*AddResult, error) {
	ft, interval, weekStart, maxPer, ok := cadencePreset(cadence)
	if !ok {
		return nil, ErrInvalidCadence
	}

	var tpl GoalTemplate
	if err := s.DB.WithContext(ctx).First(&tpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	var existing UserGoal
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == StatusArchived {
			if err := s.DB.WithContext(ctx).Model(&existing).Updates(map[string]any{
				"status":                      StatusActive,
				"frequency_type_override":     ft,
				"frequency_interval_override": interval,
				"week_start_override":         weekStart,
				"max_per_period_override":     maxPer,
			}).Error; err != nil {
				return nil, err
			}
			return &AddResult{ID: existing.ID, Reactivated: true}, nil
		}
		return &AddResult{ID: existing.ID}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		g := UserGoal{
			UserID:                    userID,
			TemplateID:                templateID,
			Status:                    StatusActive,
			FrequencyTypeOverride:     &ft,
			FrequencyIntervalOverride: &interval,
			WeekStartOverride:         weekStart,
			MaxPerPeriodOverride:      &maxPer,
		}
		if err := s.DB.WithContext(ctx).Create(&g).Error; err != nil {
			return nil, err
		}
		return &AddResult{ID: g.ID, Created: true}, nil

	default:
		return nil, err
	}
}

// WindowState reports a goal's schedule after a mutation, so the client
// can refresh without a second round trip.
type WindowState struct {
	ID                  uint64    `json:"id"`
	Status              string    `json:"status"`
	Cadence             string    `json:"cadence"`
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	CompletionsInPeriod int64     `json:"completions_in_period"`
	CanComplete         bool      `json:"can_complete"`
}

func (s *Service) windowState(ctx context.Context, g *UserGoal, now time.Time) (*WindowState, error) {
	eff := g.EffectiveCadence()
	window := progression.Window(now, eff)
	n, err := s.countInWindow(s.DB.WithContext(ctx), g.ID, window)
	if err != nil {
		return nil, err
	}
	return &WindowState{
		ID:                  g.ID,
		Status:              g.Status,
		Cadence:             string(eff.Type),
		PeriodStart:         window.Start,
		PeriodEnd:           window.End,
		CompletionsInPeriod: n,
		CanComplete:         n < int64(eff.MaxPerPeriod),
	}, nil
}

// UpdateSchedule switches an active goal to a daily|weekly preset and
// reports the resulting window. Archived goals must be unarchived
// first.
func (s *Service) UpdateSchedule(ctx context.Context, userID, userGoalID uint64, cadence string, now time.Time) (*WindowState, error) {
	ft, interval, weekStart, maxPer, ok := cadencePreset(cadence)
	if !ok {
		return nil, ErrInvalidCadence
	}

	var g UserGoal
	if err := s.DB.WithContext(ctx).Preload("Template").
		Where("id = ? AND user_id = ?", userGoalID, userID).
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if g.Status != StatusActive {
		return nil, ErrArchived
	}

	if err := s.DB.WithContext(ctx).Model(&g).Updates(map[string]any{
		"frequency_type_override":     ft,
		"frequency_interval_override": interval,
		"week_start_override":         weekStart,
		"max_per_period_override":     maxPer,
	}).Error; err != nil {
		return nil, err
	}

	g.FrequencyTypeOverride = &ft
	g.FrequencyIntervalOverride = &interval
	g.WeekStartOverride = weekStart
	g.MaxPerPeriodOverride = &maxPer

	return s.windowState(ctx, &g, now)
}

// Archive parks a goal without touching its history.
func (s *Service) Archive(ctx context.Context, userID, userGoalID uint64) error {
	tx := s.DB.WithContext(ctx).Model(&UserGoal{}).
		Where("id = ? AND user_id = ?", userGoalID, userID).
		Update("status", StatusArchived)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Unarchive reactivates a goal and reports its current window. Calling
// it on an already-active goal just reports state.
func (s *Service) Unarchive(ctx context.Context, userID, userGoalID uint64, now time.Time) (*WindowState, bool, error) {
	var g UserGoal
	if err := s.DB.WithContext(ctx).Preload("Template").
		Where("id = ? AND user_id = ?", userGoalID, userID).
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if g.Status == StatusActive {
		st, err := s.windowState(ctx, &g, now)
		return st, false, err
	}

	if err := s.DB.WithContext(ctx).Model(&g).Update("status", StatusActive).Error; err != nil {
		return nil, false, err
	}
	g.Status = StatusActive

	st, err := s.windowState(ctx, &g, now)
	return st, true, err
}

// Delete removes an archived goal and its completion history. Active
// goals must be archived first.
func (s *Service) Delete(ctx context.Context, userID, userGoalID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g UserGoal
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", userGoalID, userID).
			First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if g.Status != StatusArchived {
			return ErrNotArchived
		}

		if err := tx.Where("user_goal_id = ?", g.ID).Delete(&UserGoalCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&g).Error
	})
}
