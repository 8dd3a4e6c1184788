package service

import (
	"errors"
	"testing"
	"time"

	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/model"
)

func newAttemptFixture(session *model.Session, test *model.Test, participants ...*model.SessionParticipant) (*attemptService, *fakeAttemptRepo, *fakeParticipantRepo) {
	sessionRepo := newFakeSessionRepo(session)
	participantRepo := newFakeParticipantRepo(participants...)
	attemptRepo := newFakeAttemptRepo()
	testRepo := newFakeTestRepo(test)
	questionRepo := &fakeQuestionRepo{}
	for i := range test.Questions {
		questionRepo.questions = append(questionRepo.questions, test.Questions[i])
	}
	answerRepo := &fakeAnswerRepo{}

	participantSvc := NewParticipantService(sessionRepo, participantRepo, attemptRepo, testConfig())
	svc := NewAttemptService(sessionRepo, testRepo, questionRepo, attemptRepo, answerRepo, participantRepo, participantSvc, NewScoringService(), nil).(*attemptService)
	return svc, attemptRepo, participantRepo
}

func TestApplyExpiryPinsCompletionToLimit(t *testing.T) {
	startedAt := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	const limit = 1800

	tests := []struct {
		name    string
		status  string
		at      time.Time
		expired bool
	}{
		{"under limit", model.AttemptStatusInProgress, startedAt.Add(29 * time.Minute), false},
		{"exactly at limit", model.AttemptStatusInProgress, startedAt.Add(30 * time.Minute), true},
		{"one second past", model.AttemptStatusInProgress, startedAt.Add(30*time.Minute + time.Second), true},
		{"hours past", model.AttemptStatusInProgress, startedAt.Add(6 * time.Hour), true},
		{"already completed", model.AttemptStatusCompleted, startedAt.Add(time.Hour), false},
		{"already auto completed", model.AttemptStatusAutoCompleted, startedAt.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := &model.TestAttempt{
				Status:           tt.status,
				StartedAt:        &startedAt,
				TimeSpentSeconds: 300,
			}
			if got := applyExpiry(attempt, limit, tt.at); got != tt.expired {
				t.Fatalf("applyExpiry = %v, want %v", got, tt.expired)
			}
			if !tt.expired {
				if attempt.Status != tt.status {
					t.Errorf("status mutated to %q", attempt.Status)
				}
				return
			}
			if attempt.Status != model.AttemptStatusAutoCompleted {
				t.Errorf("status = %q, want auto_completed", attempt.Status)
			}
			if attempt.TimeSpentSeconds != limit {
				t.Errorf("time_spent_seconds = %d, want %d", attempt.TimeSpentSeconds, limit)
			}
			wantCompleted := startedAt.Add(limit * time.Second)
			if attempt.CompletedAt == nil || !attempt.CompletedAt.Equal(wantCompleted) {
				t.Errorf("completed_at = %v, want %v", attempt.CompletedAt, wantCompleted)
			}
		})
	}
}

func TestApplyExpiryIgnoresUnlimitedTests(t *testing.T) {
	startedAt := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	attempt := &model.TestAttempt{Status: model.AttemptStatusInProgress, StartedAt: &startedAt}
	if applyExpiry(attempt, 0, startedAt.Add(100*time.Hour)) {
		t.Error("attempt without a time limit expired")
	}
}

func TestClampedTimeSpent(t *testing.T) {
	startedAt := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		limit int
		at    time.Time
		want  int
	}{
		{"mid attempt", 1800, startedAt.Add(10 * time.Minute), 600},
		{"clamped at limit", 1800, startedAt.Add(45 * time.Minute), 1800},
		{"no limit", 0, startedAt.Add(45 * time.Minute), 2700},
		{"clock skew", 1800, startedAt.Add(-time.Minute), 0},
	}
	for _, tt := range tests {
		if got := clampedTimeSpent(startedAt, tt.limit, tt.at); got != tt.want {
			t.Errorf("%s: clampedTimeSpent = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestProgressPercentage(t *testing.T) {
	if got := progressPercentage(3, 0); got != 0 {
		t.Errorf("zero-question progress = %v, want 0", got)
	}
	if got := progressPercentage(6, 10); got != 60 {
		t.Errorf("progress = %v, want 60", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	session := activeSession(1, start, start.Add(2*time.Hour))
	session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10, Required: true}}
	test := &model.Test{ID: 10, Title: "Verbal Reasoning", TimeLimitSeconds: 1800,
		Questions: []model.Question{{ID: 1, TestID: 10, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: "B"}}}
	p := &model.SessionParticipant{SessionID: 1, UserID: 42, Status: model.ParticipantStatusRegistered}

	svc, attemptRepo, participantRepo := newAttemptFixture(session, test, p)
	svc.now = func() time.Time { return start.Add(10 * time.Minute) }

	first, err := svc.Start(1, 42, 10)
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if first.Status != model.AttemptStatusInProgress || first.TotalQuestions != 1 {
		t.Errorf("attempt = %+v, want in_progress with 1 question", first)
	}
	// Starting any module bumps attendance.
	if got, _ := participantRepo.FindBySessionAndUser(1, 42); got.Status != model.ParticipantStatusStarted {
		t.Errorf("participant status = %q, want started", got.Status)
	}

	second, err := svc.Start(1, 42, 10)
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat start created a new attempt: %d vs %d", second.ID, first.ID)
	}
	if len(attemptRepo.attempts) != 1 {
		t.Errorf("attempt rows = %d, want 1", len(attemptRepo.attempts))
	}
}

func TestStartRejections(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("unregistered user", func(t *testing.T) {
		session := activeSession(1, start, start.Add(2*time.Hour))
		session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10}}
		test := &model.Test{ID: 10, TimeLimitSeconds: 1800}
		svc, _, _ := newAttemptFixture(session, test)
		svc.now = func() time.Time { return start.Add(10 * time.Minute) }

		if _, err := svc.Start(1, 42, 10); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("err = %v, want forbidden", err)
		}
	})

	t.Run("test not a session module", func(t *testing.T) {
		session := activeSession(1, start, start.Add(2*time.Hour))
		session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10}}
		test := &model.Test{ID: 99, TimeLimitSeconds: 1800}
		p := &model.SessionParticipant{SessionID: 1, UserID: 42, Status: model.ParticipantStatusRegistered}
		svc, _, _ := newAttemptFixture(session, test, p)
		svc.now = func() time.Time { return start.Add(10 * time.Minute) }

		if _, err := svc.Start(1, 42, 99); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("err = %v, want invalid", err)
		}
	})

	t.Run("session window closed", func(t *testing.T) {
		session := activeSession(1, start, start.Add(time.Hour))
		session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10}}
		test := &model.Test{ID: 10, TimeLimitSeconds: 1800}
		p := &model.SessionParticipant{SessionID: 1, UserID: 42, Status: model.ParticipantStatusRegistered}
		svc, _, _ := newAttemptFixture(session, test, p)
		svc.now = func() time.Time { return start.Add(2 * time.Hour) }

		if _, err := svc.Start(1, 42, 10); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("err = %v, want conflict", err)
		}
	})

	t.Run("draft session", func(t *testing.T) {
		session := activeSession(1, start, start.Add(2*time.Hour))
		session.Status = model.SessionStatusDraft
		session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10}}
		test := &model.Test{ID: 10, TimeLimitSeconds: 1800}
		p := &model.SessionParticipant{SessionID: 1, UserID: 42, Status: model.ParticipantStatusRegistered}
		svc, _, _ := newAttemptFixture(session, test, p)
		svc.now = func() time.Time { return start.Add(10 * time.Minute) }

		if _, err := svc.Start(1, 42, 10); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("err = %v, want conflict", err)
		}
	})
}

func TestStartSurfacesLazyExpiry(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	session := activeSession(1, start, start.Add(4*time.Hour))
	session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10, Required: true}}
	test := &model.Test{ID: 10, TimeLimitSeconds: 1800}
	p := &model.SessionParticipant{SessionID: 1, UserID: 42, Status: model.ParticipantStatusStarted}

	svc, attemptRepo, participantRepo := newAttemptFixture(session, test, p)
	startedAt := start.Add(time.Hour)
	attemptRepo.Create(&model.TestAttempt{
		SessionID: 1, UserID: 42, TestID: 10,
		Status:    model.AttemptStatusInProgress,
		StartedAt: &startedAt,
	})

	// Read one second after the limit: 10:00:00 start, poll at 10:30:01.
	svc.now = func() time.Time { return startedAt.Add(30*time.Minute + time.Second) }

	resp, err := svc.Start(1, 42, 10)
	if err != nil {
		t.Fatalf("start of expired attempt failed: %v", err)
	}
	if resp.Status != model.AttemptStatusAutoCompleted {
		t.Errorf("status = %q, want auto_completed", resp.Status)
	}
	if resp.TimeSpentSeconds != 1800 {
		t.Errorf("time_spent_seconds = %d, want exactly 1800", resp.TimeSpentSeconds)
	}

	// The expiry is persisted, not just derived.
	stored, _ := attemptRepo.FindByIdentity(1, 42, 10)
	if stored.Status != model.AttemptStatusAutoCompleted {
		t.Errorf("stored status = %q, want auto_completed", stored.Status)
	}
	wantCompleted := startedAt.Add(30 * time.Minute)
	if stored.CompletedAt == nil || !stored.CompletedAt.Equal(wantCompleted) {
		t.Errorf("stored completed_at = %v, want %v", stored.CompletedAt, wantCompleted)
	}

	// The only required module is now terminal, so the participant is
	// promoted too.
	if got, _ := participantRepo.FindBySessionAndUser(1, 42); got.Status != model.ParticipantStatusCompleted {
		t.Errorf("participant status = %q, want completed", got.Status)
	}
}

func TestGetScoreRecomputesFromAnswers(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	session := activeSession(1, start, start.Add(2*time.Hour))
	session.Modules = []model.SessionModule{{SessionID: 1, TestID: 10}}
	test := &model.Test{ID: 10, TimeLimitSeconds: 0, Questions: []model.Question{
		{ID: 1, TestID: 10, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: "A", Points: 2},
		{ID: 2, TestID: 10, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: "B", Points: 2},
	}}
	svc, attemptRepo, _ := newAttemptFixture(session, test)

	startedAt := start.Add(10 * time.Minute)
	attempt := &model.TestAttempt{
		SessionID: 1, UserID: 42, TestID: 10,
		Status: model.AttemptStatusCompleted, StartedAt: &startedAt,
		AnsweredCount: 2, TotalQuestions: 2,
	}
	attemptRepo.Create(attempt)
	svc.answerRepo.(*fakeAnswerRepo).answers = []model.Answer{
		{TestAttemptID: attempt.ID, QuestionID: 1, Value: "A"},
		{TestAttemptID: attempt.ID, QuestionID: 2, Value: "C"},
	}

	score, err := svc.GetScore(attempt.ID)
	if err != nil {
		t.Fatalf("GetScore failed: %v", err)
	}
	if score.RawScore != 2 || score.CorrectCount != 1 {
		t.Errorf("score = %+v, want raw 2 and 1 correct", score)
	}
	if score.AccuracyRate != 50 || score.CompletionPercentage != 100 {
		t.Errorf("score = %+v, want accuracy 50 completion 100", score)
	}
}
