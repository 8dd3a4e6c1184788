package service

import (
	"math"

	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

// ScoringService is a stateless projection from raw answers plus
// question metadata to scores. It is the single source of truth: any
// persisted results row elsewhere is an advisory cache that can be
// rebuilt by calling Score again.
type ScoringService interface {
	Score(attempt *model.TestAttempt, answers []model.Answer, questions []model.Question) dto.ComputedScore
	AggregateUserScores(userID uint, scores []dto.ComputedScore) dto.UserScoreSummary
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

// gradingRule is a closed set of variants over question kinds. Each
// variant carries only the fields its grading needs, so the per-answer
// dispatch is an exhaustive type switch instead of presence checks on
// loosely typed optional columns.
type gradingRule interface {
	isGradingRule()
}

// choiceRule grades multiple_choice and true_false: the submitted value
// either equals the correct answer or is looked up in the score map.
// Only choice answers count toward correct_count.
type choiceRule struct {
	correct  string
	points   float64
	scoreMap map[string]float64
}

// openRule grades everything else (rating_scale, text, ...): any
// non-empty answer is "correct" for accuracy purposes and scores from
// the map when present, else the numeric value of the answer itself.
type openRule struct {
	scoreMap map[string]float64
}

func (choiceRule) isGradingRule() {}
func (openRule) isGradingRule()   {}

// ruleFor builds the grading variant for a question. The score map is
// taken from scoring_key first, falling back to options.
func ruleFor(q *model.Question) gradingRule {
	scoreMap := scoreMapOf(q)
	switch q.Type {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		points := q.Points
		if points == 0 {
			points = 1
		}
		return choiceRule{correct: q.CorrectAnswer, points: points, scoreMap: scoreMap}
	default:
		return openRule{scoreMap: scoreMap}
	}
}

func scoreMapOf(q *model.Question) map[string]float64 {
	raw := q.ScoringKey
	if len(raw) == 0 {
		raw = q.Options
	}
	if len(raw) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(raw))
	for value, points := range raw {
		f, err := cast.ToFloat64E(points)
		if err != nil {
			// Options may hold labels rather than scores; skip those.
			continue
		}
		scores[value] = f
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

// gradeAnswer returns the points earned and whether the answer counts
// as correct for the accuracy rate.
func gradeAnswer(rule gradingRule, answer *model.Answer) (points float64, correct bool) {
	switch r := rule.(type) {
	case choiceRule:
		if r.scoreMap != nil {
			if p, ok := r.scoreMap[answer.Value]; ok {
				return p, p > 0
			}
			return 0, false
		}
		if answer.Value != "" && answer.Value == r.correct {
			return r.points, true
		}
		return 0, false
	case openRule:
		if answer.IsEmpty() {
			return 0, false
		}
		if r.scoreMap != nil {
			if p, ok := r.scoreMap[answer.Value]; ok {
				return p, true
			}
			return 0, true
		}
		// Default: the answer's own numeric value, e.g. a rating.
		return cast.ToFloat64(answer.Value), true
	default:
		return 0, false
	}
}

// Score recomputes the full score from raw answers. Answers whose
// question cannot be resolved are skipped and logged, never fatal.
func (s *scoringService) Score(attempt *model.TestAttempt, answers []model.Answer, questions []model.Question) dto.ComputedScore {
	questionMap := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	var score dto.ComputedScore
	for i := range answers {
		answer := &answers[i]
		question, ok := questionMap[answer.QuestionID]
		if !ok {
			log.Warn().
				Uint("attemptID", attempt.ID).
				Uint("questionID", answer.QuestionID).
				Msg("Score: answer references unresolvable question, skipping")
			continue
		}

		score.AnsweredCount++
		points, correct := gradeAnswer(ruleFor(question), answer)
		score.RawScore += points
		if correct {
			score.CorrectCount++
		}
	}

	total := attempt.TotalQuestions
	score.ScaledScore = safePercent(score.RawScore, float64(total))
	score.CompletionPercentage = safePercent(float64(score.AnsweredCount), float64(total))
	score.AccuracyRate = safePercent(float64(score.CorrectCount), float64(score.AnsweredCount))
	return score
}

// safePercent returns part/whole*100 rounded to two decimals, 0 when
// the denominator is 0.
func safePercent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*100*100) / 100
}

// AggregateUserScores averages scaled scores (never raw scores) so
// tests of different lengths weigh equally. Zero attempts degrade to
// all zeros.
func (s *scoringService) AggregateUserScores(userID uint, scores []dto.ComputedScore) dto.UserScoreSummary {
	summary := dto.UserScoreSummary{UserID: userID, AttemptCount: len(scores)}
	if len(scores) == 0 {
		return summary
	}
	var scaledSum, accuracySum float64
	for _, sc := range scores {
		scaledSum += sc.ScaledScore
		accuracySum += sc.AccuracyRate
		if sc.ScaledScore > summary.BestScaledScore {
			summary.BestScaledScore = sc.ScaledScore
		}
	}
	n := float64(len(scores))
	summary.AverageScaledScore = math.Round(scaledSum/n*100) / 100
	summary.AverageAccuracyRate = math.Round(accuracySum/n*100) / 100
	return summary
}
