package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"levelup/internal/progression"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already used")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNoCategories  = errors.New("no valid category ids")
)

// scoreByRank maps a manual priority rank (1-indexed) to a score.
// Beyond the table everything scores 0.
var scoreByRank = []float64{100, 90, 80, 70, 60, 50, 40, 35, 30, 25, 20, 15, 10, 5, 0}

type Service struct {
	DB *gorm.DB
}

// Profile is a user plus the XP breakdown derived from the leveling curve.
type Profile struct {
	User       User
	XPProgress progression.ProgressInfo
}

func (s *Service) Get(ctx context.Context, id uint64) (*Profile, error) {
	var u User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Profile{User: u, XPProgress: progression.Progress(u.XP)}, nil
}

type UpdateProfileInput struct {
	Email    *string
	Username *string
}

// UpdateProfile changes email and/or username after uniqueness checks.
// Format validation happens at the HTTP boundary.
func (s *Service) UpdateProfile(ctx context.Context, id uint64, in UpdateProfileInput) (*Profile, error) {
	var u User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]any{}

	if in.Email != nil && *in.Email != u.Email {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&User{}).
			Where("email = ? AND id <> ?", *in.Email, u.ID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrEmailTaken
		}
		updates["email"] = *in.Email
	}

	if in.Username != nil && *in.Username != u.Username {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&User{}).
			Where("username = ? AND id <> ?", *in.Username, u.ID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrUsernameTaken
		}
		updates["username"] = *in.Username
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &Profile{User: u, XPProgress: progression.Progress(u.XP)}, nil
}

// PriorityView is a priority row joined with its category name.
type PriorityView struct {
	CategoryID   uint64  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Score        float64 `json:"score"`
}

func (s *Service) Priorities(ctx context.Context, userID uint64) ([]PriorityView, error) {
	var out []PriorityView
	err := s.DB.WithContext(ctx).
		Table("user_priorities").
		Select("user_priorities.category_id, categories.name as category_name, user_priorities.score").
		Joins("join categories on categories.id = user_priorities.category_id").
		Where("user_priorities.user_id = ?", userID).
		Order("user_priorities.score desc").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReorderPriorities replaces the user's scores from an explicit ranking,
// most important first. Duplicate and non-positive ids are skipped.
func (s *Service) ReorderPriorities(ctx context.Context, userID uint64, orderedCategoryIDs []uint64) (int, error) {
	seen := map[uint64]struct{}{}
	var ordered []uint64
	for _, id := range orderedCategoryIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	if len(ordered) == 0 {
		return 0, ErrNoCategories
	}

	now := time.Now()
	rows := make([]UserPriority, 0, len(ordered))
	for i, catID := range ordered {
		score := 0.0
		if i < len(scoreByRank) {
			score = scoreByRank[i]
		}
		rows = append(rows, UserPriority{
			UserID:     userID,
			CategoryID: catID,
			Score:      score,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
