package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
)

func breakdownWith(content, comm, conf float64, emotion *float64) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		ContentScore:       content,
		CommunicationScore: comm,
		ConfidenceScore:    conf,
		EmotionStability:   emotion,
	}
}

func TestOverallWeightedFormula(t *testing.T) {
	w := DefaultWeights()

	// 90*0.4 + 80*0.3 + 70*0.2 + 50*0.1 with a missing emotion signal
	overall := w.Overall(breakdownWith(90, 80, 70, nil))
	assert.Equal(t, 79.0, overall)

	emotion := 100.0
	overall = w.Overall(breakdownWith(90, 80, 70, &emotion))
	assert.Equal(t, 84.0, overall)
}

func TestOverallClampsSubScores(t *testing.T) {
	w := DefaultWeights()

	overall := w.Overall(breakdownWith(150, -20, 100, nil))
	// 100*0.4 + 0*0.3 + 100*0.2 + 50*0.1
	assert.Equal(t, 65.0, overall)
}

func TestStrengthLabel(t *testing.T) {
	assert.Equal(t, "strong", StrengthLabel(80))
	assert.Equal(t, "strong", StrengthLabel(95.5))
	assert.Equal(t, "moderate", StrengthLabel(79.9))
	assert.Equal(t, "moderate", StrengthLabel(50))
	assert.Equal(t, "weak", StrengthLabel(49.9))
	assert.Equal(t, "weak", StrengthLabel(0))
}

func answersScoring(scores ...float64) []models.AnswerRecord {
	out := make([]models.AnswerRecord, 0, len(scores))
	for _, s := range scores {
		out = append(out, models.AnswerRecord{Evaluation: models.ScoreBreakdown{OverallScore: s}})
	}
	return out
}

func TestScoreRound(t *testing.T) {
	assert.Equal(t, RoundScore{}, ScoreRound(nil), "empty round keeps the zero sentinel")

	got := ScoreRound(answersScoring(80, 75, 90))
	assert.Equal(t, 81.67, got.Score)
	assert.Equal(t, 3, got.QuestionsAsked)

	got = ScoreRound(answersScoring(60, 65, 50))
	assert.Equal(t, 58.33, got.Score)
}

func TestRecommend(t *testing.T) {
	th := DefaultThresholds()

	tech := RoundScore{Score: 81.67, QuestionsAsked: 3}
	hr := RoundScore{Score: 75, QuestionsAsked: 2}
	assert.Equal(t, RecommendSelected, th.Recommend(tech, hr, 78.3))

	// strong technical but HR never reached cannot be Selected
	assert.Equal(t, RecommendMaybe, th.Recommend(tech, RoundScore{}, 81.67))

	weakHR := RoundScore{Score: 40, QuestionsAsked: 2}
	assert.Equal(t, RecommendMaybe, th.Recommend(tech, weakHR, 60))

	lowTech := RoundScore{Score: 45, QuestionsAsked: 3}
	assert.Equal(t, RecommendNotSelected, th.Recommend(lowTech, RoundScore{}, 45))
}

func TestNextDifficulty(t *testing.T) {
	assert.Equal(t, "hard", NextDifficulty(85))
	assert.Equal(t, "hard", NextDifficulty(80))
	assert.Equal(t, "medium", NextDifficulty(65))
	assert.Equal(t, "medium", NextDifficulty(50))
	assert.Equal(t, "easy", NextDifficulty(49.9))
}
