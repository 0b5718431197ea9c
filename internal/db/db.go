package db

import (
	"fmt"

	"levelup/internal/category"
	"levelup/internal/goal"
	"levelup/internal/onboarding"
	"levelup/internal/quote"
	"levelup/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&user.User{},
		&user.UserPriority{},
		&category.Category{},
		&onboarding.Question{},
		&onboarding.QuestionWeight{},
		&onboarding.Submission{},
		&onboarding.Answer{},
		&goal.GoalTemplate{},
		&goal.UserGoal{},
		&goal.UserGoalCompletion{},
		&quote.Quote{},
	); err != nil {
		return err
	}

	// One subscription per (user, template)
	if err := gdb.Exec(`create unique index if not exists uq_user_goals_user_template on user_goals(user_id, template_id);`).Error; err != nil {
		return err
	}

	// One priority row per (user, category); the upsert paths rely on it
	if err := gdb.Exec(`create unique index if not exists uq_user_priorities_user_category on user_priorities(user_id, category_id);`).Error; err != nil {
		return err
	}

	// One weight per (question, category)
	if err := gdb.Exec(`create unique index if not exists uq_onb_weights_question_category on onboarding_question_weights(question_id, category_id);`).Error; err != nil {
		return err
	}

	// One answer per question inside a submission
	if err := gdb.Exec(`create unique index if not exists uq_answers_submission_question on user_questionnaire_answers(submission_id, question_id);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_completions_goal_completed on user_goal_completions(user_goal_id, completed_at);`,
		`create index if not exists idx_goal_templates_enabled_owner on goal_templates(enabled, owner_user_id);`,
		`create index if not exists idx_questions_lang_enabled on onboarding_questions(language, enabled);`,
		`create index if not exists idx_quotes_lang_active on quotes(language, is_active);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
