package service

import (
	"time"

	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// attemptWriteStore is the row set a finalizing attempt write works
// against. The gorm implementation runs inside one transaction with the
// attempt row locked; the guarded updates only land while the row is
// still in_progress, so exactly one terminal write wins regardless of
// interleaving.
type attemptWriteStore interface {
	LockAttempt(id uint) (*model.TestAttempt, error)
	FindTest(id uint) (*model.Test, error)
	FindQuestion(testID, questionID uint) (*model.Question, error)
	FindAnswer(attemptID, questionID uint) (*model.Answer, error)
	SaveAttempt(attempt *model.TestAttempt) error
	SaveAnswer(answer *model.Answer) error
	UpdateProgressWhileInProgress(attemptID uint, answeredCount, timeSpentSeconds int) (int64, error)
	FinalizeWhileInProgress(attemptID uint, completedAt time.Time, timeSpentSeconds int) (int64, error)
}

type gormAttemptStore struct {
	tx *gorm.DB
}

func (s *gormAttemptStore) LockAttempt(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	if err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (s *gormAttemptStore) FindTest(id uint) (*model.Test, error) {
	var test model.Test
	if err := s.tx.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (s *gormAttemptStore) FindQuestion(testID, questionID uint) (*model.Question, error) {
	var question model.Question
	if err := s.tx.Where("id = ? AND test_id = ?", questionID, testID).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *gormAttemptStore) FindAnswer(attemptID, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	if err := s.tx.Where("test_attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *gormAttemptStore) SaveAttempt(attempt *model.TestAttempt) error {
	return s.tx.Save(attempt).Error
}

func (s *gormAttemptStore) SaveAnswer(answer *model.Answer) error {
	return s.tx.Save(answer).Error
}

func (s *gormAttemptStore) UpdateProgressWhileInProgress(attemptID uint, answeredCount, timeSpentSeconds int) (int64, error) {
	res := s.tx.Model(&model.TestAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptStatusInProgress).
		Updates(map[string]any{
			"answered_count":     answeredCount,
			"time_spent_seconds": timeSpentSeconds,
		})
	return res.RowsAffected, res.Error
}

func (s *gormAttemptStore) FinalizeWhileInProgress(attemptID uint, completedAt time.Time, timeSpentSeconds int) (int64, error) {
	res := s.tx.Model(&model.TestAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptStatusInProgress).
		Updates(map[string]any{
			"status":             model.AttemptStatusCompleted,
			"completed_at":       completedAt,
			"time_spent_seconds": timeSpentSeconds,
		})
	return res.RowsAffected, res.Error
}
