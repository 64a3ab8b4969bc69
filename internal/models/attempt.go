package models

import "time"

// Round is a phase of the interview with its own question set and cutoff.
type Round string

const (
	RoundTechnical Round = "Technical"
	RoundHR        Round = "HR"
)

// Status describes the lifecycle state of an interview attempt.
// Once a terminal status is reached no further answers are accepted.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Termination reasons recorded on terminal attempts.
const (
	ReasonCompleted       = "completed"
	ReasonTimeExpired     = "time_expired"
	ReasonTechnicalCutoff = "technical_cutoff_not_met"
	ReasonCandidateEnded  = "candidate_ended"
)

// InterviewAttempt is one candidate's run through the interview flow,
// from start to terminal status. Owned by exactly one candidate token;
// mutated only by the strictly sequential request stream for that token.
type InterviewAttempt struct {
	ID             string `json:"id" bson:"_id"`
	CandidateToken string `json:"candidate_token" bson:"candidate_token"`
	CandidateName  string `json:"candidate_name,omitempty" bson:"candidate_name,omitempty"`
	CandidateEmail string `json:"candidate_email,omitempty" bson:"candidate_email,omitempty"`
	SessionID      string `json:"session_id,omitempty" bson:"session_id,omitempty"` // HR posting / monitoring group

	JobRole         string `json:"job_role" bson:"job_role"`
	JobDescription  string `json:"job_description,omitempty" bson:"job_description,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty" bson:"experience_level,omitempty"`
	Difficulty      string `json:"difficulty" bson:"difficulty"`
	DurationMinutes int    `json:"duration_minutes" bson:"duration_minutes"`

	Status            Status           `json:"status" bson:"status"`
	CurrentRound      Round            `json:"current_round" bson:"current_round"`
	TerminationReason string           `json:"termination_reason,omitempty" bson:"termination_reason,omitempty"`
	Questions         []QuestionRecord `json:"questions" bson:"questions"`
	Answers           []AnswerRecord   `json:"answers" bson:"answers"`
	TechnicalScore    *float64         `json:"technical_score,omitempty" bson:"technical_score,omitempty"`
	HRScore           *float64         `json:"hr_score,omitempty" bson:"hr_score,omitempty"`

	// Cumulative seconds spent inside external generation/scoring calls.
	// Subtracted from wall-clock elapsed so slow evaluation does not eat
	// the candidate's time.
	ProcessingSeconds float64 `json:"processing_seconds" bson:"processing_seconds"`

	StartedAt   time.Time  `json:"started_at" bson:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	// Version is bumped on every persisted update; stores use it for
	// compare-and-swap so a lost update is detected rather than absorbed.
	Version int64 `json:"-" bson:"version"`
}

// Terminal reports whether the attempt can accept further mutations.
func (a *InterviewAttempt) Terminal() bool {
	return a.Status != StatusInProgress
}

// PendingQuestion returns the issued question that has not been answered
// yet. Questions are answered strictly in issue order, so the pending one
// is always the question at index len(Answers).
func (a *InterviewAttempt) PendingQuestion() *QuestionRecord {
	if len(a.Answers) >= len(a.Questions) {
		return nil
	}
	return &a.Questions[len(a.Answers)]
}

// AnswerFor returns the stored answer for a question id, if any.
func (a *InterviewAttempt) AnswerFor(questionID string) *AnswerRecord {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// QuestionByID returns the issued question with the given id, if any.
func (a *InterviewAttempt) QuestionByID(questionID string) *QuestionRecord {
	for i := range a.Questions {
		if a.Questions[i].ID == questionID {
			return &a.Questions[i]
		}
	}
	return nil
}

// AnswersInRound returns the stored answers whose question belongs to the
// given round, in submission order.
func (a *InterviewAttempt) AnswersInRound(round Round) []AnswerRecord {
	var out []AnswerRecord
	for _, ans := range a.Answers {
		q := a.QuestionByID(ans.QuestionID)
		if q != nil && q.Round == round {
			out = append(out, ans)
		}
	}
	return out
}

// QuestionRecord is a question issued to exactly one attempt. Immutable
// once created.
type QuestionRecord struct {
	ID          string   `json:"question_id" bson:"question_id"`
	Text        string   `json:"question" bson:"question"`
	IdealAnswer string   `json:"-" bson:"ideal_answer"` // never sent to the candidate
	Keywords    []string `json:"-" bson:"keywords"`
	Round       Round    `json:"round" bson:"round"`
	Difficulty  string   `json:"difficulty" bson:"difficulty"`
	IsCoding    bool     `json:"is_coding" bson:"is_coding"`
	SequenceNo  int      `json:"question_number" bson:"sequence_no"`
}

// AnswerRecord stores one submitted answer and its evaluation. Created at
// submission time, immutable thereafter.
type AnswerRecord struct {
	QuestionID   string         `json:"question_id" bson:"question_id"`
	AnswerText   string         `json:"answer_text" bson:"answer_text"`
	CodeText     string         `json:"code_text,omitempty" bson:"code_text,omitempty"`
	CodeLanguage string         `json:"code_language,omitempty" bson:"code_language,omitempty"`
	Evaluation   ScoreBreakdown `json:"evaluation" bson:"evaluation"`
	AnsweredAt   time.Time      `json:"answered_at" bson:"answered_at"`
}
