package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// SessionResponse carries the stored session plus the time-derived
// window fields; effective_status is what dashboards display.
type SessionResponse struct {
	ID              uint                    `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	StartTime       time.Time               `json:"start_time"`
	EndTime         time.Time               `json:"end_time"`
	Status          string                  `json:"status"`
	IsActive        bool                    `json:"is_active"`
	IsExpired       bool                    `json:"is_expired"`
	EffectiveStatus string                  `json:"effective_status"`
	MaxParticipants *int                    `json:"max_participants,omitempty"`
	AutoExpire      bool                    `json:"auto_expire"`
	AllowLateEntry  bool                    `json:"allow_late_entry"`
	Modules         []SessionModuleResponse `json:"modules,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

type SessionModuleResponse struct {
	TestID           uint   `json:"test_id"`
	Title            string `json:"title"`
	Required         bool   `json:"required"`
	OrderNum         int    `json:"order_num"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
}

type ParticipantResponse struct {
	ID           uint       `json:"id"`
	SessionID    uint       `json:"session_id"`
	UserID       uint       `json:"user_id"`
	Status       string     `json:"status"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type AttemptResponse struct {
	ID                 uint       `json:"id"`
	SessionID          uint       `json:"session_id"`
	UserID             uint       `json:"user_id"`
	TestID             uint       `json:"test_id"`
	Status             string     `json:"status"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds   int        `json:"time_spent_seconds"`
	AnsweredCount      int        `json:"answered_count"`
	TotalQuestions     int        `json:"total_questions"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

type AnswerResponse struct {
	QuestionID      uint           `json:"question_id"`
	Value           string         `json:"value,omitempty"`
	StructuredValue map[string]any `json:"structured_value,omitempty"`
	SubmittedAt     time.Time      `json:"submitted_at"`
}

// AttemptDetailResponse is the full attempt view. Score is always
// freshly recomputed from the raw answers, never read from a cache.
type AttemptDetailResponse struct {
	AttemptResponse
	Answers []AnswerResponse `json:"answers,omitempty"`
	Score   *ComputedScore   `json:"score,omitempty"`
}
