package service

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/psymetrics/sessioncore/internal/repository"
	"github.com/rs/zerolog/log"
)

// SessionService owns the stored session lifecycle: creation with
// window validation and the explicit admin transitions. The stored
// status only ever moves forward; "expired" is derived, never stored.
type SessionService interface {
	CreateSession(req dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(sessionID uint) (*dto.SessionResponse, error)
	Activate(sessionID uint) (*dto.SessionResponse, error)
	Cancel(sessionID uint) (*dto.SessionResponse, error)
	Complete(sessionID uint) (*dto.SessionResponse, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	testRepo    repository.TestRepository
	now         func() time.Time
}

func NewSessionService(sessionRepo repository.SessionRepository, testRepo repository.TestRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		testRepo:    testRepo,
		now:         time.Now,
	}
}

func (s *sessionService) CreateSession(req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := ValidateSessionWindow(req.StartTime, req.EndTime); err != nil {
		log.Warn().Err(err).Msg("CreateSession: rejected malformed window")
		return nil, err
	}

	session := model.Session{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          model.SessionStatusDraft,
		MaxParticipants: req.MaxParticipants,
		AutoExpire:      true,
		AllowLateEntry:  req.AllowLateEntry,
	}
	if req.AutoExpire != nil {
		session.AutoExpire = *req.AutoExpire
	}

	for _, m := range req.Modules {
		if _, err := s.testRepo.FindByID(m.TestID); err != nil {
			log.Warn().Err(err).Uint("testID", m.TestID).Msg("CreateSession: module references unknown test")
			return nil, apperr.NotFound("test not found with ID %d", m.TestID)
		}
		module := model.SessionModule{
			TestID:   m.TestID,
			Required: true,
			OrderNum: m.OrderNum,
		}
		if m.Required != nil {
			module.Required = *m.Required
		}
		session.Modules = append(session.Modules, module)
	}

	if err := s.sessionRepo.Create(&session); err != nil {
		log.Error().Err(err).Msg("CreateSession: failed to persist session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.toResponse(&session), nil
}

func (s *sessionService) GetSession(sessionID uint) (*dto.SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDWithModules(sessionID)
	if err != nil {
		log.Warn().Err(err).Uint("sessionID", sessionID).Msg("GetSession: session not found")
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	return s.toResponse(session), nil
}

func (s *sessionService) Activate(sessionID uint) (*dto.SessionResponse, error) {
	return s.transition(sessionID, model.SessionStatusDraft, model.SessionStatusActive)
}

func (s *sessionService) Complete(sessionID uint) (*dto.SessionResponse, error) {
	return s.transition(sessionID, model.SessionStatusActive, model.SessionStatusCompleted)
}

func (s *sessionService) Cancel(sessionID uint) (*dto.SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	// Cancel is allowed from draft or active, never from a terminal state.
	if session.Status == model.SessionStatusCompleted || session.Status == model.SessionStatusCancelled {
		return nil, apperr.Conflict("session %d is already %s", sessionID, session.Status)
	}
	rows, err := s.sessionRepo.UpdateStatus(sessionID, session.Status, model.SessionStatusCancelled)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("Cancel: status update failed")
		return nil, fmt.Errorf("failed to cancel session %d: %w", sessionID, err)
	}
	if rows == 0 {
		return nil, apperr.Conflict("session %d changed state concurrently", sessionID)
	}
	return s.GetSession(sessionID)
}

func (s *sessionService) transition(sessionID uint, from, to string) (*dto.SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, apperr.NotFound("session not found with ID %d", sessionID)
	}
	if session.Status != from {
		return nil, apperr.Conflict("session %d is %s, cannot move to %s", sessionID, session.Status, to)
	}
	rows, err := s.sessionRepo.UpdateStatus(sessionID, from, to)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Str("to", to).Msg("Session transition failed")
		return nil, fmt.Errorf("failed to transition session %d to %s: %w", sessionID, to, err)
	}
	if rows == 0 {
		return nil, apperr.Conflict("session %d changed state concurrently", sessionID)
	}
	log.Info().Uint("sessionID", sessionID).Str("from", from).Str("to", to).Msg("Session transitioned")
	return s.GetSession(sessionID)
}

func (s *sessionService) toResponse(session *model.Session) *dto.SessionResponse {
	var resp dto.SessionResponse
	if err := copier.Copy(&resp, session); err != nil {
		log.Error().Err(err).Msg("Failed to copy Session model to response")
	}

	window := EvaluateSessionWindow(session, s.now())
	resp.IsActive = window.IsActive
	resp.IsExpired = window.IsExpired
	resp.EffectiveStatus = window.EffectiveStatus

	resp.Modules = make([]dto.SessionModuleResponse, 0, len(session.Modules))
	for _, m := range session.Modules {
		resp.Modules = append(resp.Modules, dto.SessionModuleResponse{
			TestID:           m.TestID,
			Title:            m.Test.Title,
			Required:         m.Required,
			OrderNum:         m.OrderNum,
			TimeLimitSeconds: m.Test.TimeLimitSeconds,
		})
	}
	return &resp
}
