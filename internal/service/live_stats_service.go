package service

import (
	"time"

	"github.com/psymetrics/sessioncore/config"
	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/psymetrics/sessioncore/internal/repository"
	"github.com/rs/zerolog/log"
)

// LiveStatsService feeds the polling monitor dashboards. Every call
// re-derives the aggregate view from the current row set; nothing is
// memoized, which trades CPU per poll for the absence of counter-drift
// bugs. Read-only, so concurrent pollers need no locking.
type LiveStatsService interface {
	SessionStats(sessionID uint) (*dto.SessionLiveStats, error)
	ParticipantProgress(sessionID uint) ([]dto.ParticipantProgress, error)
	Overview(sessionIDs []uint) *dto.LiveOverview
}

type liveStatsService struct {
	sessionRepo     repository.SessionRepository
	participantRepo repository.ParticipantRepository
	attemptRepo     repository.TestAttemptRepository
	participants    ParticipantService
	atRiskThreshold float64
	now             func() time.Time
}

func NewLiveStatsService(
	sessionRepo repository.SessionRepository,
	participantRepo repository.ParticipantRepository,
	attemptRepo repository.TestAttemptRepository,
	participants ParticipantService,
	cfg *config.Config,
) LiveStatsService {
	return &liveStatsService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		attemptRepo:     attemptRepo,
		participants:    participants,
		atRiskThreshold: cfg.Monitor.AtRiskThreshold,
		now:             time.Now,
	}
}

// SessionStats recomputes the session-wide aggregate for one poll.
// The no-show sweep runs first so expired sessions show attendance
// without any background job.
func (s *liveStatsService) SessionStats(sessionID uint) (*dto.SessionLiveStats, error) {
	session, err := s.sessionRepo.FindByIDWithModules(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	now := s.now()

	if err := s.participants.SweepNoShows(session, now); err != nil {
		log.Warn().Err(err).Uint("sessionID", sessionID).Msg("SessionStats: no-show sweep failed, continuing with stale attendance")
	}

	participants, err := s.participantRepo.FindBySession(sessionID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("SessionStats: participant load failed")
		return nil, err
	}
	attempts, err := s.attemptRepo.FindBySession(sessionID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("SessionStats: attempt load failed")
		return nil, err
	}
	deriveAttemptExpiry(attempts, moduleTimeLimits(session), now)

	window := EvaluateSessionWindow(session, now)
	stats := dto.SessionLiveStats{
		SessionID:       sessionID,
		EffectiveStatus: window.EffectiveStatus,
		IsActive:        window.IsActive,
		IsExpired:       window.IsExpired,
		GeneratedAt:     now,
	}

	inProgressUsers := make(map[uint]bool)
	for i := range attempts {
		if attempts[i].Status == model.AttemptStatusInProgress {
			inProgressUsers[attempts[i].UserID] = true
		}
	}

	stats.TotalParticipants = len(participants)
	for i := range participants {
		p := &participants[i]
		switch {
		case p.Status == model.ParticipantStatusCompleted:
			stats.CompletedParticipants++
		case p.Status == model.ParticipantStatusNoShow:
			stats.NoShowParticipants++
		case inProgressUsers[p.UserID]:
			stats.ActiveParticipants++
		default:
			stats.NotStartedParticipants++
		}
	}
	stats.CompletionRate = safePercent(float64(stats.CompletedParticipants), float64(stats.TotalParticipants))

	stats.Modules = moduleStats(session.Modules, attempts)
	return &stats, nil
}

// moduleTimeLimits maps test id to its time limit for the in-memory
// expiry derivation.
func moduleTimeLimits(session *model.Session) map[uint]int {
	limits := make(map[uint]int, len(session.Modules))
	for _, m := range session.Modules {
		limits[m.TestID] = m.Test.TimeLimitSeconds
	}
	return limits
}

// deriveAttemptExpiry applies the lazy expiry transition in memory so
// aggregate counts reflect the clock even before the next write
// persists the transition.
func deriveAttemptExpiry(attempts []model.TestAttempt, limits map[uint]int, now time.Time) {
	for i := range attempts {
		applyExpiry(&attempts[i], limits[attempts[i].TestID], now)
	}
}

// moduleStats scans attempts grouped by test id. An attempt row exists
// only once its module was started, so started == row count.
func moduleStats(modules []model.SessionModule, attempts []model.TestAttempt) []dto.ModuleLiveStats {
	byTest := make(map[uint][]*model.TestAttempt)
	for i := range attempts {
		byTest[attempts[i].TestID] = append(byTest[attempts[i].TestID], &attempts[i])
	}

	stats := make([]dto.ModuleLiveStats, 0, len(modules))
	for _, m := range modules {
		ms := dto.ModuleLiveStats{TestID: m.TestID, Title: m.Test.Title}
		var completionSum, completionCount float64
		for _, a := range byTest[m.TestID] {
			ms.ParticipantsStarted++
			if a.IsFinalized() {
				ms.ParticipantsCompleted++
				completionSum += float64(a.TimeSpentSeconds)
				completionCount++
			}
		}
		if completionCount > 0 {
			ms.AverageCompletionTime = completionSum / completionCount
		}
		stats = append(stats, ms)
	}
	return stats
}

// estimateCompletion linearly extrapolates a finish time from the pace
// so far. Undefined (nil) while progress is zero.
func estimateCompletion(startedAt time.Time, elapsed time.Duration, progressFraction float64) *time.Time {
	if progressFraction <= 0 || elapsed <= 0 {
		return nil
	}
	estimate := startedAt.Add(time.Duration(float64(elapsed) / progressFraction))
	return &estimate
}

// isAtRisk flags a participant whose elapsed-time fraction runs ahead
// of their answer progress by more than the threshold.
func isAtRisk(timeFraction, progressFraction, threshold float64) bool {
	return timeFraction-progressFraction > threshold
}

// ParticipantProgress builds the per-participant monitor rows. Rows
// that fail to assemble are logged and skipped so one bad participant
// cannot blank the whole dashboard.
func (s *liveStatsService) ParticipantProgress(sessionID uint) ([]dto.ParticipantProgress, error) {
	session, err := s.sessionRepo.FindByIDWithModules(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	now := s.now()

	if err := s.participants.SweepNoShows(session, now); err != nil {
		log.Warn().Err(err).Uint("sessionID", sessionID).Msg("ParticipantProgress: no-show sweep failed, continuing")
	}

	participants, err := s.participantRepo.FindBySession(sessionID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("ParticipantProgress: participant load failed")
		return nil, err
	}
	attempts, err := s.attemptRepo.FindBySession(sessionID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("ParticipantProgress: attempt load failed")
		return nil, err
	}
	limits := moduleTimeLimits(session)
	deriveAttemptExpiry(attempts, limits, now)

	currentByUser := make(map[uint]*model.TestAttempt)
	for i := range attempts {
		a := &attempts[i]
		cur, ok := currentByUser[a.UserID]
		// Prefer the attempt still in flight; otherwise the latest one.
		if !ok || (a.Status == model.AttemptStatusInProgress && cur.Status != model.AttemptStatusInProgress) {
			currentByUser[a.UserID] = a
		}
	}

	rows := make([]dto.ParticipantProgress, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		row := dto.ParticipantProgress{
			UserID: p.UserID,
			Status: p.Status,
		}
		if a, ok := currentByUser[p.UserID]; ok {
			row.TestID = a.TestID
			row.AttemptStatus = a.Status
			row.AnsweredCount = a.AnsweredCount
			row.TotalQuestions = a.TotalQuestions
			row.ProgressPercentage = progressPercentage(a.AnsweredCount, a.TotalQuestions)
			row.TimeSpentSeconds = a.TimeSpentSeconds

			if a.Status == model.AttemptStatusInProgress && a.StartedAt != nil {
				elapsed := now.Sub(*a.StartedAt)
				progressFraction := row.ProgressPercentage / 100
				row.EstimatedCompletionTime = estimateCompletion(*a.StartedAt, elapsed, progressFraction)

				if limit := limits[a.TestID]; limit > 0 {
					timeFraction := elapsed.Seconds() / float64(limit)
					row.AtRisk = isAtRisk(timeFraction, progressFraction, s.atRiskThreshold)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Overview aggregates several sessions for the bulk dashboard. A
// failing session is logged and listed under failed_session_ids; it
// never aborts the others.
func (s *liveStatsService) Overview(sessionIDs []uint) *dto.LiveOverview {
	overview := dto.LiveOverview{Sessions: make([]dto.SessionLiveStats, 0, len(sessionIDs))}
	for _, id := range sessionIDs {
		stats, err := s.SessionStats(id)
		if err != nil {
			log.Warn().Err(err).Uint("sessionID", id).Msg("Overview: session aggregation failed, excluding")
			overview.FailedSessionIDs = append(overview.FailedSessionIDs, id)
			continue
		}
		overview.Sessions = append(overview.Sessions, *stats)
	}
	return &overview
}
