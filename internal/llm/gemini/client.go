package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/harsha446-acm/ai-interview-platform/internal/engine"
	"github.com/harsha446-acm/ai-interview-platform/internal/llm"
	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/prompts"
)

// Client is a Gemini-backed question source and answer scorer.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts *prompts.Manager
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	pm, err := prompts.NewManager()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to load prompt templates",
			Err:      err,
		}
	}

	return &Client{client: client, config: config, prompts: pm}, nil
}

func (c *Client) GetProviderName() string { return "gemini" }

// NextQuestion generates the next interview question as structured JSON.
func (c *Client) NextQuestion(ctx context.Context, req engine.QuestionRequest) (*engine.GeneratedQuestion, error) {
	variant := "technical"
	if req.Round == models.RoundHR {
		variant = "hr"
	}

	prompt, err := c.prompts.BuildPrompt("question", variant, map[string]string{
		"Round":           string(req.Round),
		"JobRole":         req.JobRole,
		"JobDescription":  req.JobDescription,
		"ExperienceLevel": req.ExperienceLevel,
		"Difficulty":      req.Difficulty,
		"AskedSoFar":      bulletList(req.AskedSoFar),
		"PreviousAnswers": bulletList(req.PreviousAnswers),
	})
	if err != nil {
		return nil, &llm.ProviderError{Provider: "gemini", Code: llm.ErrCodeInvalidInput, Message: "Failed to build question prompt", Err: err}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Question    string   `json:"question"`
		IdealAnswer string   `json:"ideal_answer"`
		Keywords    []string `json:"keywords"`
		IsCoding    bool     `json:"is_coding"`
	}
	if err := parseJSONResponse(text, &parsed); err != nil || parsed.Question == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Model returned no usable question",
			Err:      err,
		}
	}

	// HR questions are never coding exercises, whatever the model says.
	isCoding := parsed.IsCoding && req.Round != models.RoundHR

	return &engine.GeneratedQuestion{
		Text:        parsed.Question,
		IdealAnswer: parsed.IdealAnswer,
		Keywords:    parsed.Keywords,
		IsCoding:    isCoding,
	}, nil
}

// Score evaluates a submitted answer. Coding questions are scored on the
// submitted code; prose answers combine local keyword/communication
// heuristics with the model's content and depth judgment.
func (c *Client) Score(ctx context.Context, req engine.ScoreRequest) (*models.ScoreBreakdown, error) {
	if req.Question.IsCoding && strings.TrimSpace(req.CodeText) != "" {
		return c.scoreCode(ctx, req)
	}
	return c.scoreProse(ctx, req)
}

func (c *Client) scoreProse(ctx context.Context, req engine.ScoreRequest) (*models.ScoreBreakdown, error) {
	matched, missed, keywordPct := keywordCoverage(req.Question.Keywords, req.AnswerText)
	commLocal := communicationScore(req.AnswerText)

	variant := "technical"
	if req.Question.Round == models.RoundHR {
		variant = "hr"
	}

	prompt, err := c.prompts.BuildPrompt("evaluate", variant, map[string]string{
		"Round":       string(req.Question.Round),
		"Question":    req.Question.Text,
		"IdealAnswer": req.Question.IdealAnswer,
		"Answer":      req.AnswerText,
	})
	if err != nil {
		return nil, &llm.ProviderError{Provider: "gemini", Code: llm.ErrCodeInvalidInput, Message: "Failed to build evaluation prompt", Err: err}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ContentScore       float64 `json:"content_score"`
		DepthScore         float64 `json:"depth_score"`
		CommunicationScore float64 `json:"communication_score"`
		Feedback           string  `json:"feedback"`
	}
	if err := parseJSONResponse(text, &parsed); err != nil {
		// The call itself succeeded but the payload was not the JSON we
		// asked for; fall back to local heuristics rather than failing
		// the candidate's step.
		parsed.ContentScore = keywordPct
		parsed.DepthScore = keywordPct * 0.8
		parsed.CommunicationScore = commLocal
		parsed.Feedback = heuristicFeedback(keywordPct, missed, req.AnswerText)
	}

	b := &models.ScoreBreakdown{
		ContentScore:       parsed.ContentScore,
		KeywordScore:       keywordPct,
		DepthScore:         parsed.DepthScore,
		CommunicationScore: maxf(parsed.CommunicationScore, commLocal),
		ConfidenceScore:    neutralConfidence,
		Feedback:           parsed.Feedback,
		KeywordsMatched:    matched,
		KeywordsMissed:     missed,
	}
	applyVideoSignal(b, req.VideoSignal)
	return b, nil
}

func (c *Client) scoreCode(ctx context.Context, req engine.ScoreRequest) (*models.ScoreBreakdown, error) {
	language := req.CodeLanguage
	if language == "" {
		language = "python"
	}

	prompt, err := c.prompts.BuildPrompt("code_eval", "default", map[string]string{
		"Question":    req.Question.Text,
		"IdealAnswer": req.Question.IdealAnswer,
		"Language":    language,
		"Code":        req.CodeText,
	})
	if err != nil {
		return nil, &llm.ProviderError{Provider: "gemini", Code: llm.ErrCodeInvalidInput, Message: "Failed to build code evaluation prompt", Err: err}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		CorrectnessScore float64 `json:"correctness_score"`
		QualityScore     float64 `json:"quality_score"`
		EfficiencyScore  float64 `json:"efficiency_score"`
		Feedback         string  `json:"feedback"`
	}
	if err := parseJSONResponse(text, &parsed); err != nil {
		parsed.CorrectnessScore = 50
		parsed.QualityScore = 50
		parsed.EfficiencyScore = 50
		parsed.Feedback = "Code submitted. Review the expected solution for comparison."
	}

	b := &models.ScoreBreakdown{
		ContentScore:       parsed.CorrectnessScore,
		KeywordScore:       parsed.QualityScore,
		DepthScore:         parsed.EfficiencyScore,
		CommunicationScore: parsed.QualityScore,
		ConfidenceScore:    neutralConfidence,
		Feedback:           parsed.Feedback,
	}
	applyVideoSignal(b, req.VideoSignal)
	return b, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Generation request failed",
			Err:      err,
		}
	}
	if result == nil {
		return "", &llm.ProviderError{Provider: "gemini", Code: llm.ErrCodeInvalidInput, Message: "No response generated"}
	}

	text, err := result.Text()
	if err != nil || text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
			Err:      err,
		}
	}
	return text, nil
}

func applyVideoSignal(b *models.ScoreBreakdown, sig *models.VideoSignal) {
	if sig == nil {
		return
	}
	b.ConfidenceScore = sig.ConfidenceScore
	stability := sig.EmotionStability
	b.EmotionStability = &stability
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
