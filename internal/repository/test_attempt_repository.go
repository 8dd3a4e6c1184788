package repository

import (
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

type TestAttemptRepository interface {
	Create(attempt *model.TestAttempt) error
	Update(attempt *model.TestAttempt) error
	FindByID(id uint) (*model.TestAttempt, error)
	FindByIDWithAnswers(id uint) (*model.TestAttempt, error)
	FindByIdentity(sessionID, userID, testID uint) (*model.TestAttempt, error)
	FindBySession(sessionID uint) ([]model.TestAttempt, error)
	FindBySessionAndUser(sessionID, userID uint) ([]model.TestAttempt, error)
	FindByUser(userID uint) ([]model.TestAttempt, error)
}

type testAttemptRepository struct {
	db *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{db: db}
}

func (r *testAttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *testAttemptRepository) Update(attempt *model.TestAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *testAttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.First(&attempt, id).Error
	return &attempt, err
}

func (r *testAttemptRepository) FindByIDWithAnswers(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.
		Preload("Test").
		Preload("Answers.Question").
		First(&attempt, id).Error
	return &attempt, err
}

func (r *testAttemptRepository) FindByIdentity(sessionID, userID, testID uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.
		Where("session_id = ? AND user_id = ? AND test_id = ?", sessionID, userID, testID).
		First(&attempt).Error
	return &attempt, err
}

func (r *testAttemptRepository) FindBySession(sessionID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.Where("session_id = ?", sessionID).Find(&attempts).Error
	return attempts, err
}

func (r *testAttemptRepository) FindBySessionAndUser(sessionID, userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).Find(&attempts).Error
	return attempts, err
}

func (r *testAttemptRepository) FindByUser(userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}
