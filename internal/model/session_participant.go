package model

import (
	"time"

	"gorm.io/gorm"
)

// Participant statuses, ordered. Transitions only move forward;
// no_show is a side terminal reached from invited/registered when the
// session window closes without the participant ever starting.
const (
	ParticipantStatusInvited    = "invited"
	ParticipantStatusRegistered = "registered"
	ParticipantStatusStarted    = "started"
	ParticipantStatusCompleted  = "completed"
	ParticipantStatusNoShow     = "no_show"
)

type SessionParticipant struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	SessionID    uint           `json:"session_id" gorm:"not null;uniqueIndex:idx_session_user"`
	UserID       uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_session_user"`
	Status       string         `json:"status" gorm:"not null;default:'invited'"`
	RegisteredAt *time.Time     `json:"registered_at,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// participantStatusRank orders the forward-only lifecycle. no_show sits
// beside registered: it may overwrite invited/registered but never
// started or completed.
var participantStatusRank = map[string]int{
	ParticipantStatusInvited:    0,
	ParticipantStatusRegistered: 1,
	ParticipantStatusNoShow:     1,
	ParticipantStatusStarted:    2,
	ParticipantStatusCompleted:  3,
}

// CanTransitionTo reports whether moving to newStatus respects the
// monotonic participant state machine. completed is reachable only
// from started; no_show only from invited/registered.
func (p *SessionParticipant) CanTransitionTo(newStatus string) bool {
	cur, ok := participantStatusRank[p.Status]
	if !ok {
		return false
	}
	next, ok := participantStatusRank[newStatus]
	if !ok {
		return false
	}
	switch newStatus {
	case ParticipantStatusNoShow:
		return p.Status == ParticipantStatusInvited || p.Status == ParticipantStatusRegistered
	case ParticipantStatusCompleted:
		return p.Status == ParticipantStatusStarted
	}
	return next > cur
}
