package repository

import (
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	FindByAttempt(attemptID uint) ([]model.Answer, error)
	FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindByAttempt(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("test_attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *answerRepository) FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Where("test_attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error
	return &answer, err
}
