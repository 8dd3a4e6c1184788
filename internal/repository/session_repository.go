package repository

import (
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *model.Session) error
	Update(session *model.Session) error
	FindByID(id uint) (*model.Session, error)
	FindByIDWithModules(id uint) (*model.Session, error)
	FindByIDs(ids []uint) ([]model.Session, error)
	UpdateStatus(id uint, from, to string) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) Update(session *model.Session) error {
	return r.db.Save(session).Error
}

func (r *sessionRepository) FindByID(id uint) (*model.Session, error) {
	var session model.Session
	err := r.db.First(&session, id).Error
	return &session, err
}

func (r *sessionRepository) FindByIDWithModules(id uint) (*model.Session, error) {
	var session model.Session
	err := r.db.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("session_modules.order_num ASC")
	}).Preload("Modules.Test").First(&session, id).Error
	return &session, err
}

func (r *sessionRepository) FindByIDs(ids []uint) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("id IN ?", ids).Find(&sessions).Error
	return sessions, err
}

// UpdateStatus flips the stored status only when the current value
// still matches `from`, so concurrent admin actions cannot move a
// session backward. Returns the number of rows changed.
func (r *sessionRepository) UpdateStatus(id uint, from, to string) (int64, error) {
	res := r.db.Model(&model.Session{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
