package repository

import (
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

type ParticipantRepository interface {
	Create(participant *model.SessionParticipant) error
	Update(participant *model.SessionParticipant) error
	FindByID(id uint) (*model.SessionParticipant, error)
	FindBySessionAndUser(sessionID, userID uint) (*model.SessionParticipant, error)
	FindBySession(sessionID uint) ([]model.SessionParticipant, error)
	CountBySession(sessionID uint) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(participant *model.SessionParticipant) error {
	return r.db.Create(participant).Error
}

func (r *participantRepository) Update(participant *model.SessionParticipant) error {
	return r.db.Save(participant).Error
}

func (r *participantRepository) FindByID(id uint) (*model.SessionParticipant, error) {
	var participant model.SessionParticipant
	err := r.db.First(&participant, id).Error
	return &participant, err
}

func (r *participantRepository) FindBySessionAndUser(sessionID, userID uint) (*model.SessionParticipant, error) {
	var participant model.SessionParticipant
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&participant).Error
	return &participant, err
}

func (r *participantRepository) FindBySession(sessionID uint) ([]model.SessionParticipant, error) {
	var participants []model.SessionParticipant
	err := r.db.Where("session_id = ?", sessionID).Order("user_id ASC").Find(&participants).Error
	return participants, err
}

func (r *participantRepository) CountBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.SessionParticipant{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}
