package model

import (
	"time"

	"gorm.io/gorm"
)

// Stored session statuses. "expired" is never persisted; it is derived
// from the time window on every read.
const (
	SessionStatusDraft     = "draft"
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

type Session struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	Title           string          `json:"title" gorm:"not null"`
	Description     string          `json:"description,omitempty"`
	StartTime       time.Time       `json:"start_time" gorm:"not null;index"`
	EndTime         time.Time       `json:"end_time" gorm:"not null;index"`
	Status          string          `json:"status" gorm:"not null;default:'draft'"` // "draft", "active", "completed", "cancelled"
	MaxParticipants *int            `json:"max_participants,omitempty"`
	AutoExpire      bool            `json:"auto_expire" gorm:"default:true"`
	AllowLateEntry  bool            `json:"allow_late_entry" gorm:"default:false"`
	Modules         []SessionModule `json:"modules,omitempty" gorm:"foreignKey:SessionID"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// SessionModule links a test to a session. Required modules gate the
// participant's transition to completed.
type SessionModule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	SessionID uint           `json:"session_id" gorm:"not null;index;uniqueIndex:idx_session_test"`
	TestID    uint           `json:"test_id" gorm:"not null;uniqueIndex:idx_session_test"`
	Test      Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Required  bool           `json:"required" gorm:"default:true"`
	OrderNum  int            `json:"order_num" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
