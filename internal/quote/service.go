package quote

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNoQuote = errors.New("no active quote for this language")

type Service struct {
	DB *gorm.DB
}

// dayHash gives a stable index for a date string, so everyone sees the
// same quote on a given day without storing any selection state.
func dayHash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// Today picks the quote of the day for a language.
func (s *Service) Today(ctx context.Context, lang string, now time.Time) (*Quote, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&Quote{}).
		Where("is_active = ? AND language = ?", true, lang).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoQuote
	}

	day := now.UTC().Format("2006-01-02")
	index := int(dayHash(day) % uint32(total))

	var q Quote
	if err := s.DB.WithContext(ctx).
		Where("is_active = ? AND language = ?", true, lang).
		Order("id asc").
		Offset(index).
		First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoQuote
		}
		return nil, err
	}
	return &q, nil
}
