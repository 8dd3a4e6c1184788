package service

import (
	"time"

	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/model"
)

// Derived session status shown to dashboards. Never persisted; the
// stored status stays "active" after the window closes and expiry is
// recomputed from the clock on every read.
const SessionStatusExpired = "expired"

// SessionWindow is the time-derived view of a session.
type SessionWindow struct {
	IsActive        bool   `json:"is_active"`
	IsExpired       bool   `json:"is_expired"`
	EffectiveStatus string `json:"effective_status"`
}

// EvaluateSessionWindow derives the effective display status of a
// session at the given instant. Pure: no I/O, no side effects, so it is
// safe to call on every read path. Precedence:
// cancelled > completed > expired > active > draft.
func EvaluateSessionWindow(session *model.Session, now time.Time) SessionWindow {
	w := SessionWindow{
		IsExpired: now.After(session.EndTime),
	}
	w.IsActive = session.Status == model.SessionStatusActive &&
		!now.Before(session.StartTime) && !now.After(session.EndTime)

	switch {
	case session.Status == model.SessionStatusCancelled:
		w.EffectiveStatus = model.SessionStatusCancelled
	case session.Status == model.SessionStatusCompleted:
		w.EffectiveStatus = model.SessionStatusCompleted
	case w.IsExpired:
		w.EffectiveStatus = SessionStatusExpired
	case w.IsActive:
		w.EffectiveStatus = model.SessionStatusActive
	default:
		w.EffectiveStatus = model.SessionStatusDraft
	}
	return w
}

// ValidateSessionWindow rejects malformed windows at creation time so
// the pure evaluators never see end <= start.
func ValidateSessionWindow(start, end time.Time) error {
	if !end.After(start) {
		return apperr.Invalid("session end_time %s must be after start_time %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}
