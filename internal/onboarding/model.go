package onboarding

import "time"

// Question is one questionnaire item. Immutable while scoring runs.
type Question struct {
	ID        uint64    `gorm:"primaryKey"`
	Code      string    `gorm:"size:64;uniqueIndex;not null"`
	Text      string    `gorm:"column:question;type:text;not null"`
	Language  string    `gorm:"size:8;not null;default:'fr'"`
	Enabled   bool      `gorm:"not null;default:true"`
	SortOrder int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Question) TableName() string { return "onboarding_questions" }

// QuestionWeight ties a question to a category with a signed weight.
// Unique per (question, category).
type QuestionWeight struct {
	ID         uint64    `gorm:"primaryKey"`
	QuestionID uint64    `gorm:"not null;index"`
	CategoryID uint64    `gorm:"not null;index"`
	Weight     float64   `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (QuestionWeight) TableName() string { return "onboarding_question_weights" }

// Submission is one completed questionnaire attempt. Append-only.
type Submission struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      uint64    `gorm:"not null;index"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Submission) TableName() string { return "user_onboarding_submissions" }

// Answer is a single questionnaire answer inside a submission.
type Answer struct {
	ID           uint64    `gorm:"primaryKey"`
	SubmissionID uint64    `gorm:"not null"`
	UserID       uint64    `gorm:"not null;index"`
	QuestionID   uint64    `gorm:"not null;index"`
	AnswerValue  int       `gorm:"not null"` // 1..5 Likert
	CreatedAt    time.Time `gorm:"not null"`
}

func (Answer) TableName() string { return "user_questionnaire_answers" }
