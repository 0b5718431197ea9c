package onboarding

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"levelup/internal/category"
	"levelup/internal/user"
)

// minValidAnswers is the smallest number of validated answers a
// submission needs before scoring runs.
const minValidAnswers = 12

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyCompleted    = errors.New("onboarding already completed")
	ErrInsufficientAnswers = errors.New("not enough valid answers")
)

type Service struct {
	DB *gorm.DB
}

// Questions lists the enabled questions for a language, display order
// first. When userID is known and that user already finished onboarding
// the call is refused, so the front can redirect instead of re-asking.
func (s *Service) Questions(ctx context.Context, lang string, userID uint64) ([]Question, error) {
	if userID != 0 {
		var u user.User
		err := s.DB.WithContext(ctx).Select("id", "onboarding_done").First(&u, userID).Error
		if err == nil && u.OnboardingDone {
			return nil, ErrAlreadyCompleted
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var rows []Question
	if err := s.DB.WithContext(ctx).
		Where("enabled = ? AND language = ?", true, lang).
		Order("sort_order asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type AnswerInput struct {
	QuestionID uint64
	Value      int // 1..5
}

// RankedPriority is one category's normalized score, 1 = most preferred.
type RankedPriority struct {
	CategoryID   uint64  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
}

type Result struct {
	UserID     uint64           `json:"user_id"`
	Priorities []RankedPriority `json:"priorities"`
}

// SubmitAnswers runs the one-time questionnaire scoring for a user.
//
// Everything happens in a single transaction with a lock on the user
// row: the answers are validated against the enabled question set,
// persisted as one submission plus its answer rows, folded into raw
// per-category scores with (value-3)*weight, normalized to [0,100],
// upserted as priorities, and the onboarding flag is flipped. Any
// failure rolls the whole attempt back.
func (s *Service) SubmitAnswers(ctx context.Context, userID uint64, lang string, answers []AnswerInput, now time.Time) (*Result, error) {
	var res *Result

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.OnboardingDone {
			return ErrAlreadyCompleted
		}

		// keep entries with a plausible id and a 1..5 value
		valid := make([]AnswerInput, 0, len(answers))
		for _, a := range answers {
			if a.QuestionID > 0 && a.Value >= 1 && a.Value <= 5 {
				valid = append(valid, a)
			}
		}
		if len(valid) < minValidAnswers {
			return ErrInsufficientAnswers
		}

		// drop answers that do not match an enabled question of this language
		qids := make([]uint64, 0, len(valid))
		seen := map[uint64]struct{}{}
		for _, a := range valid {
			if _, ok := seen[a.QuestionID]; !ok {
				seen[a.QuestionID] = struct{}{}
				qids = append(qids, a.QuestionID)
			}
		}
		var knownIDs []uint64
		if err := tx.Model(&Question{}).
			Where("id IN ? AND enabled = ? AND language = ?", qids, true, lang).
			Pluck("id", &knownIDs).Error; err != nil {
			return err
		}
		known := map[uint64]struct{}{}
		for _, id := range knownIDs {
			known[id] = struct{}{}
		}
		filtered := valid[:0]
		for _, a := range valid {
			if _, ok := known[a.QuestionID]; ok {
				filtered = append(filtered, a)
			}
		}
		if len(filtered) < minValidAnswers {
			return ErrInsufficientAnswers
		}

		sub := Submission{UserID: userID, SubmittedAt: now, CreatedAt: now}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		rows := make([]Answer, 0, len(filtered))
		for _, a := range filtered {
			rows = append(rows, Answer{
				SubmissionID: sub.ID,
				UserID:       userID,
				QuestionID:   a.QuestionID,
				AnswerValue:  a.Value,
				CreatedAt:    now,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		var weights []QuestionWeight
		if err := tx.Where("question_id IN ?", qids).Find(&weights).Error; err != nil {
			return err
		}

		ansByQuestion := map[uint64]int{}
		for _, a := range filtered {
			ansByQuestion[a.QuestionID] = a.Value
		}

		// raw score += (value - 3) * weight, recentering 1..5 to -2..+2
		rawByCat := map[uint64]float64{}
		for _, w := range weights {
			val, ok := ansByQuestion[w.QuestionID]
			if !ok {
				continue
			}
			rawByCat[w.CategoryID] += float64(val-3) * w.Weight
		}

		// every category participates in normalization, untouched ones at 0
		var cats []category.Category
		if err := tx.Order("id asc").Find(&cats).Error; err != nil {
			return err
		}
		for _, c := range cats {
			if _, ok := rawByCat[c.ID]; !ok {
				rawByCat[c.ID] = 0
			}
		}

		minRaw, maxRaw := math.Inf(1), math.Inf(-1)
		for _, v := range rawByCat {
			minRaw = math.Min(minRaw, v)
			maxRaw = math.Max(maxRaw, v)
		}

		normalized := func(raw float64) float64 {
			if minRaw == maxRaw {
				return 50.0
			}
			return math.Round((raw-minRaw)/(maxRaw-minRaw)*100*10) / 10
		}

		ranked := make([]RankedPriority, 0, len(cats))
		prios := make([]user.UserPriority, 0, len(cats))
		for _, c := range cats {
			score := normalized(rawByCat[c.ID])
			ranked = append(ranked, RankedPriority{
				CategoryID:   c.ID,
				CategoryName: c.Name,
				Score:        score,
			})
			prios = append(prios, user.UserPriority{
				UserID:     userID,
				CategoryID: c.ID,
				Score:      score,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		if len(prios) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
			}).Create(&prios).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&u).Update("onboarding_done", true).Error; err != nil {
			return err
		}

		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
		for i := range ranked {
			ranked[i].Rank = i + 1
		}

		res = &Result{UserID: userID, Priorities: ranked}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
