package dto

import "time"

// SessionLiveStats is recomputed from the current row set on every
// poll; no counters are kept in sync incrementally.
type SessionLiveStats struct {
	SessionID              uint              `json:"session_id"`
	EffectiveStatus        string            `json:"effective_status"`
	IsActive               bool              `json:"is_active"`
	IsExpired              bool              `json:"is_expired"`
	TotalParticipants      int               `json:"total_participants"`
	ActiveParticipants     int               `json:"active_participants"`
	CompletedParticipants  int               `json:"completed_participants"`
	NotStartedParticipants int               `json:"not_started_participants"`
	NoShowParticipants     int               `json:"no_show_participants"`
	CompletionRate         float64           `json:"completion_rate"`
	Modules                []ModuleLiveStats `json:"modules"`
	GeneratedAt            time.Time         `json:"generated_at"`
}

type ModuleLiveStats struct {
	TestID                uint    `json:"test_id"`
	Title                 string  `json:"title"`
	ParticipantsStarted   int     `json:"participants_started"`
	ParticipantsCompleted int     `json:"participants_completed"`
	AverageCompletionTime float64 `json:"average_completion_time"` // seconds
}

// ParticipantProgress is the per-participant live monitor row.
// estimated_completion_time is omitted while progress is zero since the
// linear extrapolation is undefined there.
type ParticipantProgress struct {
	UserID                  uint       `json:"user_id"`
	Status                  string     `json:"status"`
	TestID                  uint       `json:"test_id,omitempty"`
	AttemptStatus           string     `json:"attempt_status,omitempty"`
	AnsweredCount           int        `json:"answered_count"`
	TotalQuestions          int        `json:"total_questions"`
	ProgressPercentage      float64    `json:"progress_percentage"`
	TimeSpentSeconds        int        `json:"time_spent_seconds"`
	EstimatedCompletionTime *time.Time `json:"estimated_completion_time,omitempty"`
	AtRisk                  bool       `json:"at_risk"`
}

// LiveOverview is the bulk dashboard payload. Sessions that fail to
// aggregate are listed by id and excluded, never aborting the batch.
type LiveOverview struct {
	Sessions         []SessionLiveStats `json:"sessions"`
	FailedSessionIDs []uint             `json:"failed_session_ids,omitempty"`
}
