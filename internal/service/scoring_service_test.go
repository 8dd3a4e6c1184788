package service

import (
	"reflect"
	"testing"

	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"gorm.io/datatypes"
)

func choiceQuestion(id uint, correct string) model.Question {
	return model.Question{ID: id, TestID: 1, Type: model.QuestionTypeMultipleChoice, CorrectAnswer: correct, Points: 1}
}

func TestScoreTenQuestionScenario(t *testing.T) {
	// 10 questions, 6 answered, 4 correct.
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 10}

	questions := make([]model.Question, 0, 10)
	for i := uint(1); i <= 10; i++ {
		questions = append(questions, choiceQuestion(i, "a"))
	}
	answers := []model.Answer{
		{QuestionID: 1, Value: "a"},
		{QuestionID: 2, Value: "a"},
		{QuestionID: 3, Value: "a"},
		{QuestionID: 4, Value: "a"},
		{QuestionID: 5, Value: "b"},
		{QuestionID: 6, Value: "c"},
	}

	score := svc.Score(attempt, answers, questions)

	if score.AnsweredCount != 6 {
		t.Errorf("AnsweredCount = %d, want 6", score.AnsweredCount)
	}
	if score.CorrectCount != 4 {
		t.Errorf("CorrectCount = %d, want 4", score.CorrectCount)
	}
	if score.AccuracyRate != 66.67 {
		t.Errorf("AccuracyRate = %v, want 66.67", score.AccuracyRate)
	}
	if score.CompletionPercentage != 60 {
		t.Errorf("CompletionPercentage = %v, want 60", score.CompletionPercentage)
	}
	if score.RawScore != 4 {
		t.Errorf("RawScore = %v, want 4", score.RawScore)
	}
	if score.ScaledScore != 40 {
		t.Errorf("ScaledScore = %v, want 40 (raw/10*100)", score.ScaledScore)
	}
}

func TestScoreIsPure(t *testing.T) {
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 3}
	questions := []model.Question{choiceQuestion(1, "a"), choiceQuestion(2, "b"), choiceQuestion(3, "c")}
	answers := []model.Answer{{QuestionID: 1, Value: "a"}, {QuestionID: 2, Value: "x"}}

	first := svc.Score(attempt, answers, questions)
	second := svc.Score(attempt, answers, questions)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}

	// An extra correct answer strictly increases raw and scaled scores.
	more := append(answers, model.Answer{QuestionID: 3, Value: "c"})
	third := svc.Score(attempt, more, questions)
	if third.RawScore <= first.RawScore {
		t.Errorf("RawScore did not increase: %v -> %v", first.RawScore, third.RawScore)
	}
	if third.ScaledScore <= first.ScaledScore {
		t.Errorf("ScaledScore did not increase: %v -> %v", first.ScaledScore, third.ScaledScore)
	}
}

func TestScoreZeroQuestions(t *testing.T) {
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 0}

	score := svc.Score(attempt, nil, nil)
	if score.ScaledScore != 0 || score.CompletionPercentage != 0 || score.AccuracyRate != 0 {
		t.Errorf("zero-question test produced nonzero rates: %+v", score)
	}
}

func TestScoreSkipsUnresolvableQuestion(t *testing.T) {
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 2}
	questions := []model.Question{choiceQuestion(1, "a")}
	answers := []model.Answer{
		{QuestionID: 1, Value: "a"},
		{QuestionID: 99, Value: "a"}, // question deleted
	}

	score := svc.Score(attempt, answers, questions)
	if score.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1 (orphan answer excluded)", score.AnsweredCount)
	}
	if score.RawScore != 1 {
		t.Errorf("RawScore = %v, want 1", score.RawScore)
	}
}

func TestScoreScoringKeyOverridesEquality(t *testing.T) {
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 1}
	questions := []model.Question{{
		ID:     1,
		TestID: 1,
		Type:   model.QuestionTypeMultipleChoice,
		ScoringKey: datatypes.JSONMap{
			"a": 2.0,
			"b": 0.5,
		},
	}}

	score := svc.Score(attempt, []model.Answer{{QuestionID: 1, Value: "b"}}, questions)
	if score.RawScore != 0.5 {
		t.Errorf("RawScore = %v, want 0.5 from score map", score.RawScore)
	}
	if score.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1 (positive mapped score counts correct)", score.CorrectCount)
	}

	score = svc.Score(attempt, []model.Answer{{QuestionID: 1, Value: "z"}}, questions)
	if score.RawScore != 0 || score.CorrectCount != 0 {
		t.Errorf("unmapped choice scored: %+v", score)
	}
}

func TestScoreOpenQuestions(t *testing.T) {
	svc := NewScoringService()
	attempt := &model.TestAttempt{ID: 1, TotalQuestions: 3}
	questions := []model.Question{
		{ID: 1, TestID: 1, Type: model.QuestionTypeRatingScale},
		{ID: 2, TestID: 1, Type: model.QuestionTypeText},
		{ID: 3, TestID: 1, Type: model.QuestionTypeText},
	}
	answers := []model.Answer{
		{QuestionID: 1, Value: "4"},          // rating scores its own value
		{QuestionID: 2, Value: "free text"},  // non-numeric text scores 0 but counts correct
		{QuestionID: 3, Value: ""},           // empty answer is not correct
	}

	score := svc.Score(attempt, answers, questions)
	if score.RawScore != 4 {
		t.Errorf("RawScore = %v, want 4 (rating value)", score.RawScore)
	}
	if score.CorrectCount != 2 {
		t.Errorf("CorrectCount = %d, want 2 (non-empty open answers)", score.CorrectCount)
	}
	if score.AnsweredCount != 3 {
		t.Errorf("AnsweredCount = %d, want 3", score.AnsweredCount)
	}
}

func TestAggregateUserScores(t *testing.T) {
	svc := NewScoringService()

	empty := svc.AggregateUserScores(7, nil)
	if empty.AttemptCount != 0 || empty.AverageScaledScore != 0 || empty.BestScaledScore != 0 {
		t.Errorf("zero attempts should degrade to zeros, got %+v", empty)
	}

	// Scaled scores are averaged, not raw scores, so a short test and a
	// long test weigh equally.
	summary := svc.AggregateUserScores(7, []dto.ComputedScore{
		{RawScore: 2, ScaledScore: 100, AccuracyRate: 100},  // 2/2 on a short test
		{RawScore: 10, ScaledScore: 20, AccuracyRate: 50},   // 10/50 on a long test
	})
	if summary.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2", summary.AttemptCount)
	}
	if summary.AverageScaledScore != 60 {
		t.Errorf("AverageScaledScore = %v, want 60", summary.AverageScaledScore)
	}
	if summary.AverageAccuracyRate != 75 {
		t.Errorf("AverageAccuracyRate = %v, want 75", summary.AverageAccuracyRate)
	}
	if summary.BestScaledScore != 100 {
		t.Errorf("BestScaledScore = %v, want 100", summary.BestScaledScore)
	}
}
