package dto

import "time"

// CreateSessionRequest is the admin payload for scheduling a session.
type CreateSessionRequest struct {
	Title           string                 `json:"title" binding:"required"`
	Description     string                 `json:"description"`
	StartTime       time.Time              `json:"start_time" binding:"required"`
	EndTime         time.Time              `json:"end_time" binding:"required"`
	MaxParticipants *int                   `json:"max_participants"`
	AutoExpire      *bool                  `json:"auto_expire"`
	AllowLateEntry  bool                   `json:"allow_late_entry"`
	Modules         []SessionModuleRequest `json:"modules" binding:"dive"`
}

type SessionModuleRequest struct {
	TestID   uint  `json:"test_id" binding:"required"`
	Required *bool `json:"required"`
	OrderNum int   `json:"order_num"`
}

// RegisterParticipantRequest registers a user into a session. The call
// is idempotent per (session, user).
type RegisterParticipantRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type StartAttemptRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// SubmitAnswerRequest upserts one answer keyed by question_id. Scalar
// answers use value; composite answer payloads use structured_value.
type SubmitAnswerRequest struct {
	QuestionID      uint           `json:"question_id" binding:"required"`
	Value           string         `json:"value"`
	StructuredValue map[string]any `json:"structured_value"`
}
