package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/psymetrics/sessioncore/config"
	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/psymetrics/sessioncore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ParticipantService manages the per-participant registration and
// attendance state machine inside a session.
type ParticipantService interface {
	Register(sessionID, userID uint) (*dto.ParticipantResponse, error)
	MarkStarted(sessionID, userID uint) error
	MarkCompleted(sessionID, userID uint) (*dto.ParticipantResponse, error)
	SweepNoShows(session *model.Session, now time.Time) error
}

type participantService struct {
	sessionRepo     repository.SessionRepository
	participantRepo repository.ParticipantRepository
	attemptRepo     repository.TestAttemptRepository
	lateEntryGrace  time.Duration
	now             func() time.Time
}

func NewParticipantService(
	sessionRepo repository.SessionRepository,
	participantRepo repository.ParticipantRepository,
	attemptRepo repository.TestAttemptRepository,
	cfg *config.Config,
) ParticipantService {
	return &participantService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		attemptRepo:     attemptRepo,
		lateEntryGrace:  time.Duration(cfg.Session.LateEntryGraceSeconds) * time.Second,
		now:             time.Now,
	}
}

// registrationClosed reports whether the late-entry cutoff has passed.
// Sessions that allow late entry accept registrations until end_time.
func registrationClosed(session *model.Session, now time.Time, grace time.Duration) bool {
	if session.AllowLateEntry {
		return false
	}
	return now.After(session.StartTime.Add(grace))
}

// shouldMarkNoShow reports whether the sweep assigns no_show: the
// window closed and the participant never started. Completed and
// started rows are never overwritten.
func shouldMarkNoShow(p *model.SessionParticipant, window SessionWindow) bool {
	if !window.IsExpired {
		return false
	}
	return p.Status == model.ParticipantStatusInvited || p.Status == model.ParticipantStatusRegistered
}

// Register is idempotent: an existing (session, user) row is returned
// unchanged. New registrations are checked against the session window,
// the late-entry grace and the capacity limit.
func (s *participantService) Register(sessionID, userID uint) (*dto.ParticipantResponse, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		log.Warn().Err(err).Uint("sessionID", sessionID).Msg("Register: session not found")
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}

	if existing, err := s.participantRepo.FindBySessionAndUser(sessionID, userID); err == nil {
		return participantToResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Uint("sessionID", sessionID).Uint("userID", userID).Msg("Register: lookup failed")
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}

	now := s.now()
	window := EvaluateSessionWindow(session, now)
	if session.Status == model.SessionStatusCancelled || session.Status == model.SessionStatusCompleted {
		return nil, apperr.Conflict("session %d is %s, registration closed", sessionID, session.Status)
	}
	if window.IsExpired {
		return nil, apperr.Forbidden("session %d has ended, registration closed", sessionID)
	}
	if registrationClosed(session, now, s.lateEntryGrace) {
		return nil, apperr.Forbidden("late entry window for session %d has passed", sessionID)
	}

	if session.MaxParticipants != nil {
		count, err := s.participantRepo.CountBySession(sessionID)
		if err != nil {
			log.Error().Err(err).Uint("sessionID", sessionID).Msg("Register: capacity count failed")
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= int64(*session.MaxParticipants) {
			return nil, apperr.Conflict("session %d is full (%d participants)", sessionID, *session.MaxParticipants)
		}
	}

	participant := model.SessionParticipant{
		SessionID:    sessionID,
		UserID:       userID,
		Status:       model.ParticipantStatusRegistered,
		RegisteredAt: &now,
	}
	if err := s.participantRepo.Create(&participant); err != nil {
		// A concurrent register may have won the unique index; treat
		// that as the idempotent case.
		if existing, lookupErr := s.participantRepo.FindBySessionAndUser(sessionID, userID); lookupErr == nil {
			return participantToResponse(existing), nil
		}
		log.Error().Err(err).Uint("sessionID", sessionID).Uint("userID", userID).Msg("Register: create failed")
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	log.Info().Uint("sessionID", sessionID).Uint("userID", userID).Msg("Participant registered")
	return participantToResponse(&participant), nil
}

// MarkStarted moves registered -> started. A row already at or past
// started is rejected with a conflict; callers bumping attendance on
// every attempt start treat that conflict as benign.
func (s *participantService) MarkStarted(sessionID, userID uint) error {
	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		return apperr.NotFound("participant not found for session %d user %d", sessionID, userID)
	}
	if participant.Status == model.ParticipantStatusStarted || participant.Status == model.ParticipantStatusCompleted {
		return apperr.Conflict("participant %d already %s", participant.ID, participant.Status)
	}
	if !participant.CanTransitionTo(model.ParticipantStatusStarted) {
		return apperr.Conflict("participant %d is %s, cannot start", participant.ID, participant.Status)
	}
	now := s.now()
	participant.Status = model.ParticipantStatusStarted
	participant.StartedAt = &now
	if err := s.participantRepo.Update(participant); err != nil {
		log.Error().Err(err).Uint("participantID", participant.ID).Msg("MarkStarted: update failed")
		return fmt.Errorf("failed to mark participant started: %w", err)
	}
	return nil
}

// MarkCompleted moves started -> completed once every required module
// of the session has a terminal attempt. The check is recomputed from
// the attempt rows, never cached.
func (s *participantService) MarkCompleted(sessionID, userID uint) (*dto.ParticipantResponse, error) {
	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		return nil, apperr.NotFound("participant not found for session %d user %d", sessionID, userID)
	}
	if participant.Status == model.ParticipantStatusCompleted {
		return participantToResponse(participant), nil
	}
	switch participant.Status {
	case model.ParticipantStatusStarted, model.ParticipantStatusRegistered:
		// registered is caught up through started below: the attendance
		// bump at attempt start is non-critical and may have been lost.
	default:
		return nil, apperr.Conflict("participant %d is %s, cannot complete", participant.ID, participant.Status)
	}

	session, err := s.sessionRepo.FindByIDWithModules(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	attempts, err := s.attemptRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Uint("userID", userID).Msg("MarkCompleted: attempt lookup failed")
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	if missing := missingRequiredModules(session.Modules, attempts); len(missing) > 0 {
		return nil, apperr.Conflict("participant %d has unfinished required modules %v", participant.ID, missing)
	}

	now := s.now()
	if participant.Status == model.ParticipantStatusRegistered && participant.StartedAt == nil {
		participant.StartedAt = &now
	}
	participant.Status = model.ParticipantStatusCompleted
	participant.CompletedAt = &now
	if err := s.participantRepo.Update(participant); err != nil {
		log.Error().Err(err).Uint("participantID", participant.ID).Msg("MarkCompleted: update failed")
		return nil, fmt.Errorf("failed to mark participant completed: %w", err)
	}
	log.Info().Uint("sessionID", sessionID).Uint("userID", userID).Msg("Participant completed session")
	return participantToResponse(participant), nil
}

// missingRequiredModules returns the test ids of required modules that
// do not yet have a terminal attempt.
func missingRequiredModules(modules []model.SessionModule, attempts []model.TestAttempt) []uint {
	terminal := make(map[uint]bool, len(attempts))
	for i := range attempts {
		if attempts[i].IsFinalized() {
			terminal[attempts[i].TestID] = true
		}
	}
	var missing []uint
	for _, m := range modules {
		if m.Required && !terminal[m.TestID] {
			missing = append(missing, m.TestID)
		}
	}
	return missing
}

// SweepNoShows lazily assigns no_show to participants who never started
// an expired session. Idempotent and callable from any read path; a
// failed row write is logged and skipped, it never fails the sweep.
func (s *participantService) SweepNoShows(session *model.Session, now time.Time) error {
	if !session.AutoExpire {
		return nil
	}
	window := EvaluateSessionWindow(session, now)
	if !window.IsExpired {
		return nil
	}

	participants, err := s.participantRepo.FindBySession(session.ID)
	if err != nil {
		return fmt.Errorf("failed to load participants for no-show sweep: %w", err)
	}
	for i := range participants {
		p := &participants[i]
		if !shouldMarkNoShow(p, window) {
			continue
		}
		p.Status = model.ParticipantStatusNoShow
		if err := s.participantRepo.Update(p); err != nil {
			log.Warn().Err(err).Uint("participantID", p.ID).Msg("SweepNoShows: row update failed, skipping")
		}
	}
	return nil
}

func participantToResponse(p *model.SessionParticipant) *dto.ParticipantResponse {
	var resp dto.ParticipantResponse
	if err := copier.Copy(&resp, p); err != nil {
		log.Error().Err(err).Msg("Failed to copy SessionParticipant to response")
	}
	return &resp
}
