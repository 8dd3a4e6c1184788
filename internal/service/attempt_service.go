package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/psymetrics/sessioncore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttemptService drives the per-module attempt lifecycle: idempotent
// start, answer upserts, explicit finish and lazy time-expiry
// auto-completion. All transitions are one-way.
type AttemptService interface {
	Start(sessionID, userID, testID uint) (*dto.AttemptResponse, error)
	SubmitAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.AttemptResponse, error)
	Finish(attemptID uint) (*dto.AttemptResponse, error)
	GetAttempt(attemptID uint) (*dto.AttemptDetailResponse, error)
	GetScore(attemptID uint) (*dto.ComputedScore, error)
	GetUserScoreSummary(userID uint) (*dto.UserScoreSummary, error)
}

type attemptService struct {
	sessionRepo     repository.SessionRepository
	testRepo        repository.TestRepository
	questionRepo    repository.QuestionRepository
	attemptRepo     repository.TestAttemptRepository
	answerRepo      repository.AnswerRepository
	participantRepo repository.ParticipantRepository
	participants    ParticipantService
	scoring         ScoringService
	db              *gorm.DB
	now             func() time.Time
}

func NewAttemptService(
	sessionRepo repository.SessionRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.TestAttemptRepository,
	answerRepo repository.AnswerRepository,
	participantRepo repository.ParticipantRepository,
	participants ParticipantService,
	scoring ScoringService,
	db *gorm.DB,
) AttemptService {
	return &attemptService{
		sessionRepo:     sessionRepo,
		testRepo:        testRepo,
		questionRepo:    questionRepo,
		attemptRepo:     attemptRepo,
		answerRepo:      answerRepo,
		participantRepo: participantRepo,
		participants:    participants,
		scoring:         scoring,
		db:              db,
		now:             time.Now,
	}
}

// applyExpiry transitions an in_progress attempt whose time limit has
// elapsed. completed_at is pinned to started_at + limit, not now, so
// the recorded duration is deterministic no matter when the next read
// happens. Returns whether a transition occurred.
func applyExpiry(attempt *model.TestAttempt, limitSeconds int, now time.Time) bool {
	if attempt.Status != model.AttemptStatusInProgress || attempt.StartedAt == nil || limitSeconds <= 0 {
		return false
	}
	limit := time.Duration(limitSeconds) * time.Second
	if now.Sub(*attempt.StartedAt) < limit {
		return false
	}
	completedAt := attempt.StartedAt.Add(limit)
	attempt.Status = model.AttemptStatusAutoCompleted
	attempt.CompletedAt = &completedAt
	attempt.TimeSpentSeconds = limitSeconds
	return true
}

// clampedTimeSpent is elapsed seconds capped at the test limit.
func clampedTimeSpent(startedAt time.Time, limitSeconds int, now time.Time) int {
	spent := int(now.Sub(startedAt).Seconds())
	if spent < 0 {
		spent = 0
	}
	if limitSeconds > 0 && spent > limitSeconds {
		spent = limitSeconds
	}
	return spent
}

// progressPercentage guards the zero-question case: 0, never a panic.
func progressPercentage(answered, total int) float64 {
	return safePercent(float64(answered), float64(total))
}

// Start lazily creates the attempt on first access to a test module.
// Idempotent: an existing attempt is returned unchanged (after the lazy
// expiry check). Rejected when the session window is not active or the
// caller never registered.
func (s *attemptService) Start(sessionID, userID, testID uint) (*dto.AttemptResponse, error) {
	session, err := s.sessionRepo.FindByIDWithModules(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, apperr.NotFound("test not found with ID %d", testID)
	}
	if !sessionHasModule(session, testID) {
		return nil, apperr.Invalid("test %d is not a module of session %d", testID, sessionID)
	}

	now := s.now()

	if existing, err := s.attemptRepo.FindByIdentity(sessionID, userID, testID); err == nil {
		s.persistExpiryIfDue(existing, test.TimeLimitSeconds, now)
		return attemptToResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Uint("sessionID", sessionID).Uint("userID", userID).Msg("Start: attempt lookup failed")
		return nil, fmt.Errorf("failed to look up attempt: %w", err)
	}

	window := EvaluateSessionWindow(session, now)
	if !window.IsActive {
		return nil, apperr.Conflict("session %d is %s, attempts cannot start", sessionID, window.EffectiveStatus)
	}

	if err := s.requireRegistered(sessionID, userID); err != nil {
		return nil, err
	}

	total, err := s.questionRepo.CountByTestID(testID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("Start: question count failed")
		return nil, fmt.Errorf("failed to count questions for test %d: %w", testID, err)
	}

	attempt := model.TestAttempt{
		SessionID:      sessionID,
		UserID:         userID,
		TestID:         testID,
		Status:         model.AttemptStatusInProgress,
		StartedAt:      &now,
		TotalQuestions: int(total),
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		// A concurrent start may have won the unique index; return the
		// row it created.
		if existing, lookupErr := s.attemptRepo.FindByIdentity(sessionID, userID, testID); lookupErr == nil {
			return attemptToResponse(existing), nil
		}
		log.Error().Err(err).Uint("sessionID", sessionID).Uint("testID", testID).Msg("Start: create failed")
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	// Attendance bump is non-critical: a failure must not fail the
	// start itself. Repeat starts read back as benign conflicts.
	if err := s.participants.MarkStarted(sessionID, userID); err != nil && !errors.Is(err, apperr.ErrConflict) {
		log.Warn().Err(err).Uint("sessionID", sessionID).Uint("userID", userID).Msg("Start: participant attendance bump failed, continuing")
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("testID", testID).Uint("userID", userID).Msg("Attempt started")
	return attemptToResponse(&attempt), nil
}

func (s *attemptService) requireRegistered(sessionID, userID uint) error {
	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		return apperr.Forbidden("user %d is not registered for session %d", userID, sessionID)
	}
	if participant.Status != model.ParticipantStatusRegistered && participant.Status != model.ParticipantStatusStarted {
		return apperr.Forbidden("participant %d is %s, cannot attempt", participant.ID, participant.Status)
	}
	return nil
}

func sessionHasModule(session *model.Session, testID uint) bool {
	for _, m := range session.Modules {
		if m.TestID == testID {
			return true
		}
	}
	return false
}

// SubmitAnswer upserts the answer keyed by question_id. The mutability
// check and the mutation run inside one transaction with a row lock and
// a status-guarded update, so an answer can never land after a
// finish/expiry regardless of interleaving.
func (s *attemptService) SubmitAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.AttemptResponse, error) {
	now := s.now()
	var updated model.TestAttempt

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = submitAnswer(&gormAttemptStore{tx: tx}, attemptID, req, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrConflict) && !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("SubmitAnswer failed")
		}
		return nil, err
	}
	return attemptToResponse(&updated), nil
}

// submitAnswer is the transactional body of SubmitAnswer.
func submitAnswer(store attemptWriteStore, attemptID uint, req dto.SubmitAnswerRequest, now time.Time) (model.TestAttempt, error) {
	attempt, err := store.LockAttempt(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TestAttempt{}, apperr.NotFound("attempt not found with ID %d", attemptID)
		}
		return model.TestAttempt{}, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}

	test, err := store.FindTest(attempt.TestID)
	if err != nil {
		return model.TestAttempt{}, fmt.Errorf("failed to load test %d: %w", attempt.TestID, err)
	}

	if applyExpiry(attempt, test.TimeLimitSeconds, now) {
		if err := store.SaveAttempt(attempt); err != nil {
			return model.TestAttempt{}, fmt.Errorf("failed to persist attempt expiry: %w", err)
		}
		return model.TestAttempt{}, apperr.Conflict("attempt %d auto-completed at its time limit, answer rejected", attemptID)
	}
	if attempt.IsFinalized() {
		return model.TestAttempt{}, apperr.Conflict("attempt %d is %s, answers are immutable", attemptID, attempt.Status)
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return model.TestAttempt{}, apperr.Conflict("attempt %d is %s, cannot answer", attemptID, attempt.Status)
	}

	if _, err := store.FindQuestion(attempt.TestID, req.QuestionID); err != nil {
		return model.TestAttempt{}, apperr.NotFound("question %d not found on test %d", req.QuestionID, attempt.TestID)
	}

	firstAnswer := false
	answer, err := store.FindAnswer(attempt.ID, req.QuestionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		firstAnswer = true
		answer = &model.Answer{
			TestAttemptID: attempt.ID,
			QuestionID:    req.QuestionID,
		}
	case err != nil:
		return model.TestAttempt{}, fmt.Errorf("failed to load answer: %w", err)
	}

	answer.Value = req.Value
	answer.StructuredValue = datatypes.JSONMap(req.StructuredValue)
	answer.SubmittedAt = now
	if err := store.SaveAnswer(answer); err != nil {
		return model.TestAttempt{}, fmt.Errorf("failed to save answer: %w", err)
	}

	if firstAnswer {
		attempt.AnsweredCount++
	}
	attempt.TimeSpentSeconds = clampedTimeSpent(*attempt.StartedAt, test.TimeLimitSeconds, now)

	// Guarded write: only lands while the row is still in_progress.
	rows, err := store.UpdateProgressWhileInProgress(attempt.ID, attempt.AnsweredCount, attempt.TimeSpentSeconds)
	if err != nil {
		return model.TestAttempt{}, fmt.Errorf("failed to update attempt progress: %w", err)
	}
	if rows == 0 {
		return model.TestAttempt{}, apperr.Conflict("attempt %d was finalized concurrently, answer rejected", attemptID)
	}
	return *attempt, nil
}

// Finish is the participant-initiated completion. time_spent is not
// clamped: finishing before the limit is the normal case and the limit
// was already enforced by the expiry check above.
func (s *attemptService) Finish(attemptID uint) (*dto.AttemptResponse, error) {
	now := s.now()
	var finished model.TestAttempt

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		finished, err = finishAttempt(&gormAttemptStore{tx: tx}, attemptID, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrConflict) && !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Finish failed")
		}
		return nil, err
	}

	// Promoting the participant to completed is recomputed from attempt
	// rows; a still-missing required module is expected, not an error.
	if _, err := s.participants.MarkCompleted(finished.SessionID, finished.UserID); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			log.Warn().Err(err).Uint("sessionID", finished.SessionID).Uint("userID", finished.UserID).Msg("Finish: participant completion check failed, continuing")
		}
	}

	log.Info().Uint("attemptID", finished.ID).Int("timeSpent", finished.TimeSpentSeconds).Msg("Attempt finished")
	return attemptToResponse(&finished), nil
}

// finishAttempt is the transactional body of Finish.
func finishAttempt(store attemptWriteStore, attemptID uint, now time.Time) (model.TestAttempt, error) {
	attempt, err := store.LockAttempt(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TestAttempt{}, apperr.NotFound("attempt not found with ID %d", attemptID)
		}
		return model.TestAttempt{}, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}

	test, err := store.FindTest(attempt.TestID)
	if err != nil {
		return model.TestAttempt{}, fmt.Errorf("failed to load test %d: %w", attempt.TestID, err)
	}

	if applyExpiry(attempt, test.TimeLimitSeconds, now) {
		if err := store.SaveAttempt(attempt); err != nil {
			return model.TestAttempt{}, fmt.Errorf("failed to persist attempt expiry: %w", err)
		}
		return model.TestAttempt{}, apperr.Conflict("attempt %d already auto-completed at its time limit", attemptID)
	}
	if attempt.IsFinalized() {
		return model.TestAttempt{}, apperr.Conflict("attempt %d is already %s", attemptID, attempt.Status)
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return model.TestAttempt{}, apperr.Conflict("attempt %d is %s, cannot finish", attemptID, attempt.Status)
	}

	spent := int(now.Sub(*attempt.StartedAt).Seconds())
	rows, err := store.FinalizeWhileInProgress(attempt.ID, now, spent)
	if err != nil {
		return model.TestAttempt{}, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	if rows == 0 {
		return model.TestAttempt{}, apperr.Conflict("attempt %d was finalized concurrently", attemptID)
	}

	attempt.Status = model.AttemptStatusCompleted
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = spent
	return *attempt, nil
}

// GetAttempt returns the attempt with its answers and a freshly
// computed score. The lazy expiry check runs here too, so a poll is all
// it takes to surface an auto-completion.
func (s *attemptService) GetAttempt(attemptID uint) (*dto.AttemptDetailResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithAnswers(attemptID)
	if err != nil {
		return nil, apperr.NotFound("attempt not found with ID %d", attemptID)
	}
	now := s.now()
	s.persistExpiryIfDue(attempt, attempt.Test.TimeLimitSeconds, now)

	questions, err := s.questionRepo.FindByTestID(attempt.TestID)
	if err != nil {
		log.Error().Err(err).Uint("testID", attempt.TestID).Msg("GetAttempt: question load failed")
		return nil, fmt.Errorf("failed to load questions for test %d: %w", attempt.TestID, err)
	}

	resp := dto.AttemptDetailResponse{AttemptResponse: *attemptToResponse(attempt)}
	resp.Answers = make([]dto.AnswerResponse, 0, len(attempt.Answers))
	for i := range attempt.Answers {
		a := &attempt.Answers[i]
		resp.Answers = append(resp.Answers, dto.AnswerResponse{
			QuestionID:      a.QuestionID,
			Value:           a.Value,
			StructuredValue: a.StructuredValue,
			SubmittedAt:     a.SubmittedAt,
		})
	}
	score := s.scoring.Score(attempt, attempt.Answers, questions)
	resp.Score = &score
	return &resp, nil
}

// GetScore recomputes the score from raw answers. No cached result is
// consulted.
func (s *attemptService) GetScore(attemptID uint) (*dto.ComputedScore, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, apperr.NotFound("attempt not found with ID %d", attemptID)
	}
	test, err := s.testRepo.FindByID(attempt.TestID)
	if err == nil {
		s.persistExpiryIfDue(attempt, test.TimeLimitSeconds, s.now())
	}

	answers, err := s.answerRepo.FindByAttempt(attemptID)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("GetScore: answer load failed")
		return nil, fmt.Errorf("failed to load answers for attempt %d: %w", attemptID, err)
	}
	questions, err := s.questionRepo.FindByTestID(attempt.TestID)
	if err != nil {
		log.Error().Err(err).Uint("testID", attempt.TestID).Msg("GetScore: question load failed")
		return nil, fmt.Errorf("failed to load questions for test %d: %w", attempt.TestID, err)
	}

	score := s.scoring.Score(attempt, answers, questions)
	return &score, nil
}

// GetUserScoreSummary scores every attempt of the user fresh and
// averages the scaled scores. Attempts that fail to score are logged
// and excluded rather than failing the summary.
func (s *attemptService) GetUserScoreSummary(userID uint) (*dto.UserScoreSummary, error) {
	attempts, err := s.attemptRepo.FindByUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("GetUserScoreSummary: attempt load failed")
		return nil, fmt.Errorf("failed to load attempts for user %d: %w", userID, err)
	}

	scores := make([]dto.ComputedScore, 0, len(attempts))
	for i := range attempts {
		score, err := s.GetScore(attempts[i].ID)
		if err != nil {
			log.Warn().Err(err).Uint("attemptID", attempts[i].ID).Msg("GetUserScoreSummary: attempt skipped")
			continue
		}
		scores = append(scores, *score)
	}
	summary := s.scoring.AggregateUserScores(userID, scores)
	return &summary, nil
}

// persistExpiryIfDue applies the lazy expiry transition and writes it
// back. A failed write is logged and the derived state still served;
// the next read will retry the persist.
func (s *attemptService) persistExpiryIfDue(attempt *model.TestAttempt, limitSeconds int, now time.Time) {
	if !applyExpiry(attempt, limitSeconds, now) {
		return
	}
	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Warn().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to persist lazy attempt expiry, serving derived state")
	} else {
		log.Info().Uint("attemptID", attempt.ID).Msg("Attempt auto-completed at time limit")
	}
	// The participant may now have all required modules terminal.
	if _, err := s.participants.MarkCompleted(attempt.SessionID, attempt.UserID); err != nil && !errors.Is(err, apperr.ErrConflict) {
		log.Warn().Err(err).Uint("sessionID", attempt.SessionID).Uint("userID", attempt.UserID).Msg("Participant completion check after expiry failed, continuing")
	}
}

func attemptToResponse(attempt *model.TestAttempt) *dto.AttemptResponse {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Msg("Failed to copy TestAttempt to response")
	}
	resp.ProgressPercentage = progressPercentage(attempt.AnsweredCount, attempt.TotalQuestions)
	return &resp
}
