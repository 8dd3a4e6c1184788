package dto

// ComputedScore is an ephemeral projection over raw answers and
// question metadata. It is re-derivable at any time and is never the
// system of record.
type ComputedScore struct {
	RawScore             float64 `json:"raw_score"`
	ScaledScore          float64 `json:"scaled_score"`
	CorrectCount         int     `json:"correct_count"`
	AnsweredCount        int     `json:"answered_count"`
	AccuracyRate         float64 `json:"accuracy_rate"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// UserScoreSummary aggregates a user's attempts. The average is over
// scaled scores so tests of different lengths weigh equally.
type UserScoreSummary struct {
	UserID              uint    `json:"user_id"`
	AttemptCount        int     `json:"attempt_count"`
	AverageScaledScore  float64 `json:"average_scaled_score"`
	AverageAccuracyRate float64 `json:"average_accuracy_rate"`
	BestScaledScore     float64 `json:"best_scaled_score"`
}
