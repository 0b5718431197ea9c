package onboarding_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"levelup/internal/category"
	"levelup/internal/db"
	"levelup/internal/onboarding"
	"levelup/internal/user"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	return gdb
}

// seedQuestionnaire creates three categories and twelve enabled French
// questions: q1..q4 weigh on cat 1, q5..q8 on cat 2, q9..q12 on cat 3.
func seedQuestionnaire(t *testing.T, gdb *gorm.DB) []category.Category {
	t.Helper()

	cats := []category.Category{{Name: "Sport"}, {Name: "Mindset"}, {Name: "Carrière"}}
	require.NoError(t, gdb.Create(&cats).Error)

	for i := 1; i <= 12; i++ {
		q := onboarding.Question{
			Code:      fmt.Sprintf("q%02d", i),
			Text:      fmt.Sprintf("question %d", i),
			Language:  "fr",
			Enabled:   true,
			SortOrder: i,
		}
		require.NoError(t, gdb.Create(&q).Error)

		w := onboarding.QuestionWeight{
			QuestionID: q.ID,
			CategoryID: cats[(i-1)/4].ID,
			Weight:     1.0,
		}
		require.NoError(t, gdb.Create(&w).Error)
	}
	return cats
}

func seedUser(t *testing.T, gdb *gorm.DB) user.User {
	t.Helper()
	u := user.User{Email: fmt.Sprintf("%s@test.local", t.Name()), PasswordHash: "x", Level: 1}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

// answersFor builds one answer per seeded question; values[i] applies to
// the question block weighing on category i.
func answersFor(t *testing.T, gdb *gorm.DB, values [3]int) []onboarding.AnswerInput {
	t.Helper()
	var qs []onboarding.Question
	require.NoError(t, gdb.Order("sort_order asc").Find(&qs).Error)
	require.Len(t, qs, 12)

	out := make([]onboarding.AnswerInput, 0, 12)
	for i, q := range qs {
		out = append(out, onboarding.AnswerInput{QuestionID: q.ID, Value: values[i/4]})
	}
	return out
}

func TestSubmitAnswersNormalizesScores(t *testing.T) {
	gdb := openTestDB(t)
	cats := seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	// cat1 strongly liked, cat2 neutral, cat3 strongly disliked
	res, err := svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{5, 3, 1}), time.Now())
	require.NoError(t, err)
	require.Len(t, res.Priorities, 3)

	byCat := map[uint64]onboarding.RankedPriority{}
	for _, p := range res.Priorities {
		byCat[p.CategoryID] = p
	}
	require.Equal(t, 100.0, byCat[cats[0].ID].Score)
	require.Equal(t, 50.0, byCat[cats[1].ID].Score)
	require.Equal(t, 0.0, byCat[cats[2].ID].Score)

	require.Equal(t, 1, byCat[cats[0].ID].Rank)
	require.Equal(t, 2, byCat[cats[1].ID].Rank)
	require.Equal(t, 3, byCat[cats[2].ID].Rank)

	// scores persist as one row per (user, category)
	var prios []user.UserPriority
	require.NoError(t, gdb.Where("user_id = ?", u.ID).Find(&prios).Error)
	require.Len(t, prios, 3)

	var reloaded user.User
	require.NoError(t, gdb.First(&reloaded, u.ID).Error)
	require.True(t, reloaded.OnboardingDone)
}

func TestSubmitAnswersDegenerateScoresFixAtFifty(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	// all neutral: every raw score is 0, min==max
	res, err := svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{3, 3, 3}), time.Now())
	require.NoError(t, err)
	for _, p := range res.Priorities {
		require.Equal(t, 50.0, p.Score)
	}
}

func TestSubmitAnswersSecondAttemptConflicts(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	_, err := svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{5, 3, 1}), time.Now())
	require.NoError(t, err)

	_, err = svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{1, 3, 5}), time.Now())
	require.ErrorIs(t, err, onboarding.ErrAlreadyCompleted)

	// only the first attempt left traces
	var subs int64
	require.NoError(t, gdb.Model(&onboarding.Submission{}).Where("user_id = ?", u.ID).Count(&subs).Error)
	require.EqualValues(t, 1, subs)

	var answers int64
	require.NoError(t, gdb.Model(&onboarding.Answer{}).Where("user_id = ?", u.ID).Count(&answers).Error)
	require.EqualValues(t, 12, answers)
}

func TestSubmitAnswersRejectsTooFewValid(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	answers := answersFor(t, gdb, [3]int{5, 3, 1})

	// out-of-range values do not count as valid
	answers[0].Value = 0
	_, err := svc.SubmitAnswers(context.Background(), u.ID, "fr", answers, time.Now())
	require.ErrorIs(t, err, onboarding.ErrInsufficientAnswers)

	// nothing was written
	var subs int64
	require.NoError(t, gdb.Model(&onboarding.Submission{}).Count(&subs).Error)
	require.EqualValues(t, 0, subs)

	var reloaded user.User
	require.NoError(t, gdb.First(&reloaded, u.ID).Error)
	require.False(t, reloaded.OnboardingDone)
}

func TestSubmitAnswersFiltersInactiveQuestions(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	// disabling one question drops the filtered count below the threshold
	require.NoError(t, gdb.Model(&onboarding.Question{}).Where("code = ?", "q01").Update("enabled", false).Error)

	_, err := svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{5, 3, 1}), time.Now())
	require.ErrorIs(t, err, onboarding.ErrInsufficientAnswers)
}

func TestSubmitAnswersWrongLanguage(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	_, err := svc.SubmitAnswers(context.Background(), u.ID, "en", answersFor(t, gdb, [3]int{5, 3, 1}), time.Now())
	require.ErrorIs(t, err, onboarding.ErrInsufficientAnswers)
}

func TestSubmitAnswersUnknownUser(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	_, err := svc.SubmitAnswers(context.Background(), 9999, "fr", answersFor(t, gdb, [3]int{3, 3, 3}), time.Now())
	require.ErrorIs(t, err, onboarding.ErrUserNotFound)
}

func TestQuestionsGuardAfterOnboarding(t *testing.T) {
	gdb := openTestDB(t)
	seedQuestionnaire(t, gdb)
	u := seedUser(t, gdb)
	svc := &onboarding.Service{DB: gdb}

	qs, err := svc.Questions(context.Background(), "fr", u.ID)
	require.NoError(t, err)
	require.Len(t, qs, 12)

	_, err = svc.SubmitAnswers(context.Background(), u.ID, "fr", answersFor(t, gdb, [3]int{5, 3, 1}), time.Now())
	require.NoError(t, err)

	_, err = svc.Questions(context.Background(), "fr", u.ID)
	require.ErrorIs(t, err, onboarding.ErrAlreadyCompleted)

	// anonymous callers still see the list
	qs, err = svc.Questions(context.Background(), "fr", 0)
	require.NoError(t, err)
	require.Len(t, qs, 12)
}
