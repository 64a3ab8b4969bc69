package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/repositories"
)

// QuestionRequest is what the engine hands the Question Source to obtain
// the next question for an attempt.
type QuestionRequest struct {
	JobRole         string
	JobDescription  string
	ExperienceLevel string
	Round           models.Round
	Difficulty      string
	AskedSoFar      []string // question texts already issued, to avoid repeats
	PreviousAnswers []string
	LastScore       float64
}

// GeneratedQuestion is the Question Source's answer to a QuestionRequest.
type GeneratedQuestion struct {
	Text        string
	IdealAnswer string
	Keywords    []string
	IsCoding    bool
}

// QuestionSource produces the next question for a role/round/difficulty.
// Implementations are external and potentially slow; the engine calls them
// with a bounded context and treats any error as retryable.
type QuestionSource interface {
	NextQuestion(ctx context.Context, req QuestionRequest) (*GeneratedQuestion, error)
}

// ScoreRequest carries one submitted answer to the Answer Scorer.
type ScoreRequest struct {
	Question     models.QuestionRecord
	AnswerText   string
	CodeText     string
	CodeLanguage string
	VideoSignal  *models.VideoSignal
}

// AnswerScorer evaluates a submitted answer into a ScoreBreakdown. The
// engine recomputes the overall score from the breakdown; a scorer-supplied
// overall is ignored.
type AnswerScorer interface {
	Score(ctx context.Context, req ScoreRequest) (*models.ScoreBreakdown, error)
}

// Store persists attempts. Update must fail with a conflict error if the
// stored version differs from the one the attempt was loaded with.
type Store interface {
	CreateAttempt(ctx context.Context, a *models.InterviewAttempt) error
	GetAttempt(ctx context.Context, id string) (*models.InterviewAttempt, error)
	UpdateAttempt(ctx context.Context, a *models.InterviewAttempt) error
}

// Config bounds every attempt the engine runs.
type Config struct {
	TechnicalQuestions int // questions per Technical round
	HRQuestions        int // questions per HR round
	Weights            Weights
	Thresholds         Thresholds
	StepTimeout        time.Duration // per external call
}

func DefaultConfig() Config {
	return Config{
		TechnicalQuestions: 3,
		HRQuestions:        2,
		Weights:            DefaultWeights(),
		Thresholds:         DefaultThresholds(),
		StepTimeout:        45 * time.Second,
	}
}

// StartConfig is the per-attempt configuration supplied on start.
type StartConfig struct {
	CandidateToken  string
	CandidateName   string
	CandidateEmail  string
	SessionID       string
	JobRole         string
	JobDescription  string
	ExperienceLevel string
	Difficulty      string
	DurationMinutes int
}

// Engine runs interview attempts: it issues questions, records scored
// answers, decides round transitions and termination. One attempt is
// mutated by one sequential caller; every step is all-or-nothing.
type Engine struct {
	cfg       Config
	questions QuestionSource
	scorer    AnswerScorer
	store     Store
	logger    *zap.Logger
	now       func() time.Time
}

func New(cfg Config, questions QuestionSource, scorer AnswerScorer, store Store, logger *zap.Logger) *Engine {
	if cfg.TechnicalQuestions <= 0 {
		cfg.TechnicalQuestions = 3
	}
	if cfg.HRQuestions <= 0 {
		cfg.HRQuestions = 2
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 45 * time.Second
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Engine{
		cfg:       cfg,
		questions: questions,
		scorer:    scorer,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// StartResult is returned by Start and Resume.
type StartResult struct {
	SessionID  string                 `json:"session_id"`
	Question   *models.QuestionRecord `json:"question"`
	Round      models.Round           `json:"round"`
	Resumed    bool                   `json:"resumed"`
	TimeStatus TimeStatus             `json:"time_status"`
}

// Start creates a new attempt and issues its first Technical question.
// Nothing is persisted if the Question Source fails.
func (e *Engine) Start(ctx context.Context, sc StartConfig) (*StartResult, error) {
	if strings.TrimSpace(sc.JobRole) == "" || sc.DurationMinutes <= 0 {
		return nil, ErrInvalidConfig
	}
	if sc.Difficulty == "" {
		sc.Difficulty = "medium"
	}

	genStart := e.now()
	q, err := e.nextQuestion(ctx, QuestionRequest{
		JobRole:         sc.JobRole,
		JobDescription:  sc.JobDescription,
		ExperienceLevel: sc.ExperienceLevel,
		Round:           models.RoundTechnical,
		Difficulty:      sc.Difficulty,
	})
	if err != nil {
		return nil, err
	}
	processing := e.now().Sub(genStart).Seconds()

	attempt := &models.InterviewAttempt{
		ID:                uuid.New().String(),
		CandidateToken:    sc.CandidateToken,
		CandidateName:     sc.CandidateName,
		CandidateEmail:    sc.CandidateEmail,
		SessionID:         sc.SessionID,
		JobRole:           sc.JobRole,
		JobDescription:    sc.JobDescription,
		ExperienceLevel:   sc.ExperienceLevel,
		Difficulty:        sc.Difficulty,
		DurationMinutes:   sc.DurationMinutes,
		Status:            models.StatusInProgress,
		CurrentRound:      models.RoundTechnical,
		Questions:         []models.QuestionRecord{e.record(q, models.RoundTechnical, sc.Difficulty, 1)},
		Answers:           []models.AnswerRecord{},
		ProcessingSeconds: processing,
		StartedAt:         e.now().UTC(),
	}

	if err := e.store.CreateAttempt(ctx, attempt); err != nil {
		return nil, &DependencyError{Op: "persist_attempt", Err: err}
	}

	e.logger.Info("interview started",
		zap.String("attempt_id", attempt.ID),
		zap.String("job_role", attempt.JobRole),
		zap.Int("duration_minutes", attempt.DurationMinutes))

	return &StartResult{
		SessionID:  attempt.ID,
		Question:   &attempt.Questions[0],
		Round:      attempt.CurrentRound,
		TimeStatus: TimeStatusAt(attempt, e.now()),
	}, nil
}

// Resume returns the pending question of an in-progress attempt without
// mutating anything. Used when a candidate reloads mid-interview.
func (e *Engine) Resume(ctx context.Context, attemptID string) (*StartResult, error) {
	attempt, err := e.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Terminal() {
		return nil, ErrSessionTerminal
	}
	return &StartResult{
		SessionID:  attempt.ID,
		Question:   attempt.PendingQuestion(),
		Round:      attempt.CurrentRound,
		Resumed:    true,
		TimeStatus: TimeStatusAt(attempt, e.now()),
	}, nil
}

// Submission is one candidate answer. Non-coding questions require
// non-empty AnswerText; the HTTP boundary enforces that before the engine
// is reached. Coding questions are scored on CodeText, so empty prose is
// accepted when code is present.
type Submission struct {
	AnswerText   string
	CodeText     string
	CodeLanguage string
	VideoSignal  *models.VideoSignal
}

// SubmitResult is the outcome of one answer step.
type SubmitResult struct {
	Evaluation     models.ScoreBreakdown  `json:"evaluation"`
	NextQuestion   *models.QuestionRecord `json:"next_question"`
	IsComplete     bool                   `json:"is_complete"`
	Reason         string                 `json:"reason,omitempty"`
	Round          models.Round           `json:"round"`
	TechnicalScore *float64               `json:"technical_score,omitempty"`
	TimeStatus     TimeStatus             `json:"time_status"`
	Replayed       bool                   `json:"-"`
}

// SubmitAnswer scores one answer and advances the attempt. The attempt is
// persisted exactly once, after the scorer and (when needed) the question
// source both succeeded; any external failure leaves the attempt untouched
// and is retryable with the same inputs.
//
// Submitting an already-answered question id replays the stored result
// instead of re-scoring, which makes network retries harmless.
func (e *Engine) SubmitAnswer(ctx context.Context, attemptID, questionID string, sub Submission) (*SubmitResult, error) {
	attempt, err := e.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if stored := attempt.AnswerFor(questionID); stored != nil {
		return e.replay(attempt, stored), nil
	}
	if attempt.Terminal() {
		return nil, ErrSessionTerminal
	}

	pending := attempt.PendingQuestion()
	if pending == nil || pending.ID != questionID {
		return nil, ErrQuestionMismatch
	}

	stepStart := e.now()
	breakdown, err := e.scoreAnswer(ctx, *pending, sub)
	if err != nil {
		return nil, err
	}

	answer := models.AnswerRecord{
		QuestionID:   questionID,
		AnswerText:   sub.AnswerText,
		CodeText:     sub.CodeText,
		CodeLanguage: sub.CodeLanguage,
		Evaluation:   *breakdown,
		AnsweredAt:   e.now().UTC(),
	}

	// Everything below works on a staged copy; the store sees it only
	// when the whole step succeeded.
	staged := *attempt
	staged.Questions = append([]models.QuestionRecord(nil), attempt.Questions...)
	staged.Answers = append(append([]models.AnswerRecord(nil), attempt.Answers...), answer)

	// Credit the scoring call's processing time before deciding expiry,
	// so a slow scorer never eats the candidate's remaining clock.
	scored := e.now()
	staged.ProcessingSeconds += scored.Sub(stepStart).Seconds()

	status := TimeStatusAt(&staged, scored)
	result := &SubmitResult{Evaluation: answer.Evaluation, Round: staged.CurrentRound}

	switch {
	case status.IsExpired:
		// A slow scoring call racing the timer still counts: the
		// in-flight answer was scored and recorded above, then the
		// attempt is finalized with whatever work is done.
		e.finalize(&staged, models.StatusCompleted, models.ReasonTimeExpired)
		result.IsComplete = true
		result.Reason = models.ReasonTimeExpired

	case staged.CurrentRound == models.RoundTechnical:
		techAnswers := staged.AnswersInRound(models.RoundTechnical)
		if len(techAnswers) < e.cfg.TechnicalQuestions {
			if err := e.issueNext(ctx, &staged, models.RoundTechnical, answer.Evaluation.OverallScore); err != nil {
				return nil, err
			}
		} else {
			tech := ScoreRound(techAnswers)
			staged.TechnicalScore = &tech.Score
			result.TechnicalScore = &tech.Score
			if tech.Score < e.cfg.Thresholds.TechnicalCutoff {
				e.finalize(&staged, models.StatusFailed, models.ReasonTechnicalCutoff)
				result.IsComplete = true
				result.Reason = models.ReasonTechnicalCutoff
			} else {
				staged.CurrentRound = models.RoundHR
				if err := e.issueNext(ctx, &staged, models.RoundHR, answer.Evaluation.OverallScore); err != nil {
					return nil, err
				}
			}
		}

	default: // HR round
		hrAnswers := staged.AnswersInRound(models.RoundHR)
		if len(hrAnswers) < e.cfg.HRQuestions {
			if err := e.issueNext(ctx, &staged, models.RoundHR, answer.Evaluation.OverallScore); err != nil {
				return nil, err
			}
		} else {
			e.finalize(&staged, models.StatusCompleted, models.ReasonCompleted)
			result.IsComplete = true
			result.Reason = models.ReasonCompleted
		}
	}

	staged.ProcessingSeconds += e.now().Sub(scored).Seconds()
	if err := e.store.UpdateAttempt(ctx, &staged); err != nil {
		return nil, &DependencyError{Op: "persist_attempt", Err: err}
	}

	result.Round = staged.CurrentRound
	result.NextQuestion = staged.PendingQuestion()
	result.TimeStatus = TimeStatusAt(&staged, e.now())

	e.logger.Info("answer recorded",
		zap.String("attempt_id", staged.ID),
		zap.String("question_id", questionID),
		zap.Float64("overall_score", answer.Evaluation.OverallScore),
		zap.String("round", string(staged.CurrentRound)),
		zap.Bool("complete", result.IsComplete))

	return result, nil
}

// CheckTime reports the attempt clock. Read-only; never mutates.
func (e *Engine) CheckTime(ctx context.Context, attemptID string) (TimeStatus, error) {
	attempt, err := e.load(ctx, attemptID)
	if err != nil {
		return TimeStatus{}, err
	}
	return TimeStatusAt(attempt, e.now()), nil
}

// FinalStatus is the terminal summary returned by End and Report.
type FinalStatus struct {
	SessionID      string        `json:"session_id"`
	Status         models.Status `json:"status"`
	Reason         string        `json:"reason"`
	TechnicalScore RoundScore    `json:"technical"`
	HRScore        RoundScore    `json:"hr"`
}

// End finalizes an attempt with the caller's reason. Ending an already
// terminal attempt is a no-op that returns the existing terminal state.
// Already-recorded answers are preserved verbatim.
func (e *Engine) End(ctx context.Context, attemptID, reason string) (*FinalStatus, error) {
	attempt, err := e.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Terminal() {
		return e.finalStatus(attempt), nil
	}
	if reason == "" {
		reason = models.ReasonCandidateEnded
	}

	e.finalize(attempt, models.StatusCompleted, reason)
	if err := e.store.UpdateAttempt(ctx, attempt); err != nil {
		return nil, &DependencyError{Op: "persist_attempt", Err: err}
	}

	e.logger.Info("interview ended",
		zap.String("attempt_id", attempt.ID),
		zap.String("reason", reason))

	return e.finalStatus(attempt), nil
}

// Weights exposes the aggregation policy for report rendering.
func (e *Engine) Weights() Weights { return e.cfg.Weights }

// Thresholds exposes the recommendation policy for report rendering.
func (e *Engine) Thresholds() Thresholds { return e.cfg.Thresholds }

// --- internals ---

func (e *Engine) load(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	attempt, err := e.store.GetAttempt(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		// A store outage is not a protocol violation; the caller can
		// retry once the store is back.
		return nil, &DependencyError{Op: "load_attempt", Err: err}
	}
	return attempt, nil
}

func (e *Engine) replay(attempt *models.InterviewAttempt, stored *models.AnswerRecord) *SubmitResult {
	return &SubmitResult{
		Evaluation:   stored.Evaluation,
		NextQuestion: attempt.PendingQuestion(),
		IsComplete:   attempt.Terminal(),
		Reason:       attempt.TerminationReason,
		Round:        attempt.CurrentRound,
		TimeStatus:   TimeStatusAt(attempt, e.now()),
		Replayed:     true,
	}
}

func (e *Engine) scoreAnswer(ctx context.Context, q models.QuestionRecord, sub Submission) (*models.ScoreBreakdown, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	breakdown, err := e.scorer.Score(ctx, ScoreRequest{
		Question:     q,
		AnswerText:   sub.AnswerText,
		CodeText:     sub.CodeText,
		CodeLanguage: sub.CodeLanguage,
		VideoSignal:  sub.VideoSignal,
	})
	if err != nil {
		return nil, &DependencyError{Op: "score_answer", Err: err}
	}

	breakdown.OverallScore = e.cfg.Weights.Overall(*breakdown)
	breakdown.AnswerStrength = StrengthLabel(breakdown.OverallScore)
	return breakdown, nil
}

func (e *Engine) nextQuestion(ctx context.Context, req QuestionRequest) (*GeneratedQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	q, err := e.questions.NextQuestion(ctx, req)
	if err != nil {
		return nil, &DependencyError{Op: "generate_question", Err: err}
	}
	return q, nil
}

// issueNext requests and appends the next question for a round onto the
// staged attempt.
func (e *Engine) issueNext(ctx context.Context, staged *models.InterviewAttempt, round models.Round, lastScore float64) error {
	asked := make([]string, 0, len(staged.Questions))
	for _, q := range staged.Questions {
		asked = append(asked, q.Text)
	}
	answers := make([]string, 0, len(staged.Answers))
	for _, a := range staged.Answers {
		answers = append(answers, a.AnswerText)
	}

	difficulty := NextDifficulty(lastScore)
	q, err := e.nextQuestion(ctx, QuestionRequest{
		JobRole:         staged.JobRole,
		JobDescription:  staged.JobDescription,
		ExperienceLevel: staged.ExperienceLevel,
		Round:           round,
		Difficulty:      difficulty,
		AskedSoFar:      asked,
		PreviousAnswers: answers,
		LastScore:       lastScore,
	})
	if err != nil {
		return err
	}

	staged.Difficulty = difficulty
	staged.Questions = append(staged.Questions, e.record(q, round, difficulty, len(staged.Questions)+1))
	return nil
}

func (e *Engine) record(q *GeneratedQuestion, round models.Round, difficulty string, seq int) models.QuestionRecord {
	return models.QuestionRecord{
		ID:          uuid.New().String(),
		Text:        q.Text,
		IdealAnswer: q.IdealAnswer,
		Keywords:    q.Keywords,
		Round:       round,
		Difficulty:  difficulty,
		IsCoding:    q.IsCoding,
		SequenceNo:  seq,
	}
}

func (e *Engine) finalize(a *models.InterviewAttempt, status models.Status, reason string) {
	tech := ScoreRound(a.AnswersInRound(models.RoundTechnical))
	hr := ScoreRound(a.AnswersInRound(models.RoundHR))
	a.TechnicalScore = &tech.Score
	a.HRScore = &hr.Score
	a.Status = status
	a.TerminationReason = reason
	now := e.now().UTC()
	a.CompletedAt = &now
}

func (e *Engine) finalStatus(a *models.InterviewAttempt) *FinalStatus {
	return &FinalStatus{
		SessionID:      a.ID,
		Status:         a.Status,
		Reason:         a.TerminationReason,
		TechnicalScore: ScoreRound(a.AnswersInRound(models.RoundTechnical)),
		HRScore:        ScoreRound(a.AnswersInRound(models.RoundHR)),
	}
}
