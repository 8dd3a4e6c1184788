package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer rows are upserted per (attempt, question) while the attempt is
// in progress and become immutable once the attempt is finalized. They
// are never deleted.
type Answer struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	TestAttemptID   uint              `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID      uint              `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Question        Question          `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Value           string            `json:"value" gorm:"type:text"`
	StructuredValue datatypes.JSONMap `json:"structured_value,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
}

// IsEmpty reports whether the answer carries no submitted value at all.
func (a *Answer) IsEmpty() bool {
	return a.Value == "" && len(a.StructuredValue) == 0
}
