package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question types recognized by the scoring engine. Types outside the
// choice family are graded open-ended: any non-empty answer counts.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeRatingScale    = "rating_scale"
	QuestionTypeText           = "text"
)

type Question struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	TestID        uint              `json:"test_id" gorm:"not null;index"`
	Prompt        string            `json:"prompt" gorm:"type:text;not null"`
	Type          string            `json:"question_type" gorm:"column:question_type;not null"`
	OrderInTest   int               `json:"order_in_test" gorm:"not null"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Points        float64           `json:"points" gorm:"default:1"`
	ScoringKey    datatypes.JSONMap `json:"scoring_key,omitempty"` // answer value -> points override
	Options       datatypes.JSONMap `json:"options,omitempty"`     // option value -> label or score map
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}
