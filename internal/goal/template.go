package goal

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"levelup/internal/progression"
)

// TemplateFilter narrows the catalogue listing. Without OwnerOnly the
// result is the public catalogue (visibility=global); with it, all of
// the caller's own templates regardless of visibility.
type TemplateFilter struct {
	Enabled    *bool
	CategoryID uint64
	Query      string
	OwnerOnly  bool
	UserID     uint64
}

func (s *Service) ListTemplates(ctx context.Context, f TemplateFilter) ([]GoalTemplate, error) {
	q := s.DB.WithContext(ctx).Model(&GoalTemplate{})

	if f.Enabled != nil {
		q = q.Where("enabled = ?", *f.Enabled)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.OwnerOnly {
		q = q.Where("owner_user_id = ?", f.UserID)
	} else {
		q = q.Where("visibility = ?", VisibilityGlobal)
	}
	if t := strings.TrimSpace(f.Query); t != "" {
		q = q.Where("lower(title) LIKE ?", "%"+strings.ToLower(t)+"%")
	}

	var rows []GoalTemplate
	if err := q.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTemplate applies the visibility rules: global templates are public,
// private/unlisted ones exist only for their owner. Hidden templates
// read as missing so their existence is not revealed.
func (s *Service) GetTemplate(ctx context.Context, id, callerID uint64) (*GoalTemplate, error) {
	var tpl GoalTemplate
	if err := s.DB.WithContext(ctx).First(&tpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.Visibility != VisibilityGlobal {
		if callerID == 0 || tpl.OwnerUserID == nil || *tpl.OwnerUserID != callerID {
			return nil, ErrTemplateNotFound
		}
	}
	return &tpl, nil
}

type CreateTemplateInput struct {
	Title             string
	Description       *string
	CategoryID        *uint64
	BaseXP            *int
	FrequencyType     *string
	FrequencyInterval *int
	WeekStart         *int
	MaxPerPeriod      *int
	Enabled           *bool
	Visibility        string
}

// CreateTemplate stores a personal template owned by the caller.
// Missing fields take the catalogue defaults.
func (s *Service) CreateTemplate(ctx context.Context, ownerID uint64, in CreateTemplateInput) (*GoalTemplate, error) {
	visibility := VisibilityPrivate
	switch in.Visibility {
	case VisibilityGlobal, VisibilityPrivate, VisibilityUnlisted:
		visibility = in.Visibility
	}

	tpl := GoalTemplate{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		CategoryID:        in.CategoryID,
		BaseXP:            40,
		OwnerUserID:       &ownerID,
		Visibility:        visibility,
		FrequencyType:     string(progression.FreqDaily),
		FrequencyInterval: 1,
		WeekStart:         1,
		MaxPerPeriod:      1,
		Enabled:           true,
	}
	if in.BaseXP != nil {
		tpl.BaseXP = *in.BaseXP
	}
	if in.FrequencyType != nil {
		if !progression.ValidFrequencyType(*in.FrequencyType) {
			return nil, ErrInvalidCadence
		}
		tpl.FrequencyType = *in.FrequencyType
	}
	if in.FrequencyInterval != nil {
		tpl.FrequencyInterval = *in.FrequencyInterval
	}
	if in.WeekStart != nil {
		tpl.WeekStart = *in.WeekStart
	}
	if in.MaxPerPeriod != nil {
		tpl.MaxPerPeriod = *in.MaxPerPeriod
	}
	if in.Enabled != nil {
		tpl.Enabled = *in.Enabled
	}

	if err := s.DB.WithContext(ctx).Create(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// SetTemplateEnabled toggles a template. Personal templates: owner
// only. Global templates (no owner): admin only.
func (s *Service) SetTemplateEnabled(ctx context.Context, id, callerID uint64, isAdmin, enabled bool) (*GoalTemplate, error) {
	var tpl GoalTemplate
	if err := s.DB.WithContext(ctx).First(&tpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	if tpl.OwnerUserID != nil {
		if callerID == 0 || *tpl.OwnerUserID != callerID {
			return nil, ErrForbidden
		}
	} else if !isAdmin {
		return nil, ErrForbidden
	}

	if err := s.DB.WithContext(ctx).Model(&tpl).Update("enabled", enabled).Error; err != nil {
		return nil, err
	}
	tpl.Enabled = enabled
	return &tpl, nil
}
