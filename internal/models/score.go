package models

// ScoreBreakdown is the closed set of named sub-scores produced per answer.
// All sub-scores are on a 0-100 scale. Overall is derived by the aggregator
// from the four-weight policy, never taken from the scorer verbatim.
type ScoreBreakdown struct {
	ContentScore       float64 `json:"content_score" bson:"content_score"`
	KeywordScore       float64 `json:"keyword_score" bson:"keyword_score"`
	DepthScore         float64 `json:"depth_score" bson:"depth_score"`
	CommunicationScore float64 `json:"communication_score" bson:"communication_score"`
	ConfidenceScore    float64 `json:"confidence_score" bson:"confidence_score"`

	// EmotionStability is derived from the optional video signal. Nil when
	// no signal was provided; the aggregator substitutes a neutral 50.
	EmotionStability *float64 `json:"emotion_stability,omitempty" bson:"emotion_stability,omitempty"`

	OverallScore    float64  `json:"overall_score" bson:"overall_score"`
	AnswerStrength  string   `json:"answer_strength" bson:"answer_strength"`
	Feedback        string   `json:"feedback,omitempty" bson:"feedback,omitempty"`
	KeywordsMatched []string `json:"keywords_matched,omitempty" bson:"keywords_matched,omitempty"`
	KeywordsMissed  []string `json:"keywords_missed,omitempty" bson:"keywords_missed,omitempty"`
}

// VideoSignal carries the confidence-analysis numbers the client extracted
// from the candidate's video, when available.
type VideoSignal struct {
	ConfidenceScore  float64 `json:"confidence_score"`
	EmotionStability float64 `json:"emotion_stability"`
}
