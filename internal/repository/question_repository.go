package repository

import (
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByID(id uint) (*model.Question, error)
	FindByTestID(testID uint) ([]model.Question, error)
	CountByTestID(testID uint) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.db.First(&question, id).Error
	return &question, err
}

func (r *questionRepository) FindByTestID(testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("test_id = ?", testID).Order("order_in_test ASC").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CountByTestID(testID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}
