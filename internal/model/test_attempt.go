package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt statuses. Transitions are one-way:
// not_started -> in_progress -> completed | auto_completed.
const (
	AttemptStatusNotStarted    = "not_started"
	AttemptStatusInProgress    = "in_progress"
	AttemptStatusCompleted     = "completed"
	AttemptStatusAutoCompleted = "auto_completed"
)

type TestAttempt struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	SessionID        uint           `json:"session_id" gorm:"not null;index;uniqueIndex:idx_attempt_identity"`
	UserID           uint           `json:"user_id" gorm:"not null;index;uniqueIndex:idx_attempt_identity"`
	TestID           uint           `json:"test_id" gorm:"not null;index;uniqueIndex:idx_attempt_identity"`
	Test             Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Status           string         `json:"status" gorm:"not null;default:'not_started'"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	AnsweredCount    int            `json:"answered_count"`
	TotalQuestions   int            `json:"total_questions"` // denormalized from the test at creation
	Answers          []Answer       `json:"answers,omitempty" gorm:"foreignKey:TestAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsFinalized reports whether the attempt can no longer accept writes.
func (a *TestAttempt) IsFinalized() bool {
	return a.Status == AttemptStatusCompleted || a.Status == AttemptStatusAutoCompleted
}
