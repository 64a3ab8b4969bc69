package engine

import (
	"math"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
)

// neutralScore stands in for sub-scores no signal was provided for.
const neutralScore = 50.0

// Weights is the declared per-answer aggregation policy. The four weights
// must sum to 1; this formula alone decides pass/fail, regardless of which
// sub-scores a report happens to display.
type Weights struct {
	Content          float64
	Communication    float64
	Confidence       float64
	EmotionStability float64
}

// DefaultWeights is the master formula: content 40%, communication 30%,
// confidence 20%, emotion stability 10%.
func DefaultWeights() Weights {
	return Weights{Content: 0.40, Communication: 0.30, Confidence: 0.20, EmotionStability: 0.10}
}

// Thresholds are the configurable recommendation and round-pass cutoffs.
type Thresholds struct {
	TechnicalCutoff float64 // minimum technical round score to reach HR
	HRPass          float64 // minimum HR round score for a Selected verdict
	Select          float64 // overall score lower bound for Selected
	Maybe           float64 // overall score lower bound for the Maybe band
}

func DefaultThresholds() Thresholds {
	return Thresholds{TechnicalCutoff: 70, HRPass: 60, Select: 70, Maybe: 50}
}

// Overall applies the weighted formula to a breakdown. Sub-scores are
// clamped to 0-100 first; a missing emotion signal counts as neutral.
func (w Weights) Overall(b models.ScoreBreakdown) float64 {
	emotion := neutralScore
	if b.EmotionStability != nil {
		emotion = clamp(*b.EmotionStability)
	}
	overall := clamp(b.ContentScore)*w.Content +
		clamp(b.CommunicationScore)*w.Communication +
		clamp(b.ConfidenceScore)*w.Confidence +
		emotion*w.EmotionStability
	return round1(overall)
}

// StrengthLabel buckets an overall score the way reports label answers.
func StrengthLabel(overall float64) string {
	switch {
	case overall >= 80:
		return "strong"
	case overall >= 50:
		return "moderate"
	default:
		return "weak"
	}
}

// RoundScore is the aggregate for one round. QuestionsAsked zero is the
// empty-round sentinel; Score is 0 in that case rather than a division
// by zero.
type RoundScore struct {
	Score          float64 `json:"score"`
	QuestionsAsked int     `json:"questions_asked"`
}

// ScoreRound averages the per-answer overall scores of a round.
func ScoreRound(answers []models.AnswerRecord) RoundScore {
	if len(answers) == 0 {
		return RoundScore{}
	}
	sum := 0.0
	for _, a := range answers {
		sum += a.Evaluation.OverallScore
	}
	return RoundScore{
		Score:          round2(sum / float64(len(answers))),
		QuestionsAsked: len(answers),
	}
}

// Recommendations.
const (
	RecommendSelected    = "Selected"
	RecommendMaybe       = "Maybe"
	RecommendNotSelected = "Not Selected"
)

// Recommend derives the hiring recommendation from the final round scores.
// Selected requires the overall band, a passed technical round and a
// passed HR round; the Maybe band catches intermediate overall scores.
func (t Thresholds) Recommend(technical, hr RoundScore, overall float64) string {
	hrReached := hr.QuestionsAsked > 0
	if overall >= t.Select && technical.Score >= t.TechnicalCutoff && hrReached && hr.Score >= t.HRPass {
		return RecommendSelected
	}
	if overall >= t.Maybe {
		return RecommendMaybe
	}
	return RecommendNotSelected
}

// NextDifficulty adapts question difficulty to the last answer's overall
// score.
func NextDifficulty(lastOverall float64) string {
	switch {
	case lastOverall >= 80:
		return "hard"
	case lastOverall >= 50:
		return "medium"
	default:
		return "easy"
	}
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// round2 keeps round averages at two decimals so 80,75,90 reads 81.67.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
