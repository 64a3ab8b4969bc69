package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harsha446-acm/ai-interview-platform/internal/engine"
	"github.com/harsha446-acm/ai-interview-platform/internal/metrics"
	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/utils"
)

// InterviewHandler exposes the session engine over HTTP. All candidate
// endpoints are keyed by the invitation token; the attempt id stays
// server-side.
type InterviewHandler struct {
	engine    *engine.Engine
	repo      AttemptLookup
	publicURL string
	logger    *zap.Logger
}

// AttemptLookup is the read side the handler needs beyond the engine.
type AttemptLookup interface {
	GetByToken(ctx context.Context, token string) (*models.InterviewAttempt, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.InterviewAttempt, error)
}

func NewInterviewHandler(eng *engine.Engine, repo AttemptLookup, publicURL string, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{engine: eng, repo: repo, publicURL: publicURL, logger: logger}
}

type startRequest struct {
	JobRole         string `json:"job_role"`
	JobDescription  string `json:"job_description"`
	ExperienceLevel string `json:"experience_level"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"duration_minutes"`
	CandidateName   string `json:"candidate_name"`
	CandidateEmail  string `json:"candidate_email"`
	SessionID       string `json:"session_id"`
}

// StartHandler starts an interview for a token, or resumes the existing
// in-progress attempt when the candidate reloads the page.
func (handler *InterviewHandler) StartHandler(writer http.ResponseWriter, request *http.Request) {
	token := chi.URLParam(request, "token")

	if existing, err := handler.repo.GetByToken(request.Context(), token); err == nil && existing != nil {
		if existing.Terminal() {
			utils.JSON(writer, http.StatusConflict, models.ErrorResponse{
				Code:    "session_terminal",
				Message: "This interview has already ended",
			})
			return
		}
		result, err := handler.engine.Resume(request.Context(), existing.ID)
		if err != nil {
			handler.writeEngineError(writer, err)
			return
		}
		utils.JSON(writer, http.StatusOK, result)
		return
	}

	var req startRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_request",
			Message: "Invalid request payload",
		})
		return
	}

	result, err := handler.engine.Start(request.Context(), engine.StartConfig{
		CandidateToken:  token,
		CandidateName:   req.CandidateName,
		CandidateEmail:  req.CandidateEmail,
		SessionID:       req.SessionID,
		JobRole:         req.JobRole,
		JobDescription:  req.JobDescription,
		ExperienceLevel: req.ExperienceLevel,
		Difficulty:      strings.ToLower(req.Difficulty),
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		handler.writeEngineError(writer, err)
		return
	}

	metrics.AttemptStarted()
	utils.JSON(writer, http.StatusCreated, result)
}

type answerRequest struct {
	QuestionID   string              `json:"question_id"`
	AnswerText   string              `json:"answer_text"`
	CodeText     string              `json:"code_text"`
	CodeLanguage string              `json:"code_language"`
	VideoSignal  *models.VideoSignal `json:"video_signal"`
}

// AnswerHandler submits one answer for the pending question.
func (handler *InterviewHandler) AnswerHandler(writer http.ResponseWriter, request *http.Request) {
	token := chi.URLParam(request, "token")

	var req answerRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_request",
			Message: "Invalid request payload",
		})
		return
	}
	if req.QuestionID == "" {
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_question_id",
			Message: "question_id is required",
		})
		return
	}

	attempt, err := handler.repo.GetByToken(request.Context(), token)
	if err != nil || attempt == nil {
		utils.JSON(writer, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No interview found for this token",
		})
		return
	}

	// Prose questions need a non-empty answer before anything is scored.
	// Coding questions are scored on the code, so empty prose is fine there.
	if q := attempt.QuestionByID(req.QuestionID); q != nil && !q.IsCoding &&
		strings.TrimSpace(req.AnswerText) == "" {
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "empty_answer",
			Message: "answer_text must not be empty",
		})
		return
	}

	result, err := handler.engine.SubmitAnswer(request.Context(), attempt.ID, req.QuestionID, engine.Submission{
		AnswerText:   req.AnswerText,
		CodeText:     req.CodeText,
		CodeLanguage: req.CodeLanguage,
		VideoSignal:  req.VideoSignal,
	})
	if err != nil {
		handler.writeEngineError(writer, err)
		return
	}

	if !result.Replayed {
		metrics.AnswerScored()
		if result.IsComplete {
			metrics.AttemptEnded(result.Reason)
		}
	}
	utils.JSON(writer, http.StatusOK, result)
}

// TimeHandler reports the attempt's clock without mutating it.
func (handler *InterviewHandler) TimeHandler(writer http.ResponseWriter, request *http.Request) {
	attempt, ok := handler.attemptByToken(writer, request)
	if !ok {
		return
	}
	status, err := handler.engine.CheckTime(request.Context(), attempt.ID)
	if err != nil {
		handler.writeEngineError(writer, err)
		return
	}
	utils.JSON(writer, http.StatusOK, status)
}

type endRequest struct {
	Reason string `json:"reason"`
}

// EndHandler finalizes the attempt. Ending twice returns the same
// terminal state.
func (handler *InterviewHandler) EndHandler(writer http.ResponseWriter, request *http.Request) {
	attempt, ok := handler.attemptByToken(writer, request)
	if !ok {
		return
	}

	var req endRequest
	// Body is optional; a missing or malformed body means no explicit reason.
	_ = json.NewDecoder(request.Body).Decode(&req)

	wasTerminal := attempt.Terminal()
	result, err := handler.engine.End(request.Context(), attempt.ID, req.Reason)
	if err != nil {
		handler.writeEngineError(writer, err)
		return
	}

	if !wasTerminal {
		metrics.AttemptEnded(result.Reason)
	}
	utils.JSON(writer, http.StatusOK, result)
}

type reportResponse struct {
	SessionID      string               `json:"session_id"`
	CandidateName  string               `json:"candidate_name,omitempty"`
	JobRole        string               `json:"job_role"`
	Status         models.Status        `json:"status"`
	Reason         string               `json:"reason"`
	TechnicalScore engine.RoundScore    `json:"technical"`
	HRScore        engine.RoundScore    `json:"hr"`
	OverallScore   float64              `json:"overall_score"`
	Recommendation string               `json:"recommendation"`
	Answers        []reportAnswer       `json:"answers"`
}

type reportAnswer struct {
	QuestionNumber int                   `json:"question_number"`
	Question       string                `json:"question"`
	Round          models.Round          `json:"round"`
	AnswerText     string                `json:"answer_text"`
	Evaluation     models.ScoreBreakdown `json:"evaluation"`
}

// ReportHandler renders the final report for a terminal attempt.
func (handler *InterviewHandler) ReportHandler(writer http.ResponseWriter, request *http.Request) {
	attempt, ok := handler.attemptByToken(writer, request)
	if !ok {
		return
	}
	if !attempt.Terminal() {
		utils.JSON(writer, http.StatusConflict, models.ErrorResponse{
			Code:    "session_in_progress",
			Message: "The interview has not ended yet",
		})
		return
	}

	tech := engine.ScoreRound(attempt.AnswersInRound(models.RoundTechnical))
	hr := engine.ScoreRound(attempt.AnswersInRound(models.RoundHR))
	overall := overallOf(tech, hr)

	report := reportResponse{
		SessionID:      attempt.ID,
		CandidateName:  attempt.CandidateName,
		JobRole:        attempt.JobRole,
		Status:         attempt.Status,
		Reason:         attempt.TerminationReason,
		TechnicalScore: tech,
		HRScore:        hr,
		OverallScore:   overall,
		Recommendation: handler.engine.Thresholds().Recommend(tech, hr, overall),
		Answers:        make([]reportAnswer, 0, len(attempt.Answers)),
	}
	for _, ans := range attempt.Answers {
		q := attempt.QuestionByID(ans.QuestionID)
		if q == nil {
			continue
		}
		report.Answers = append(report.Answers, reportAnswer{
			QuestionNumber: q.SequenceNo,
			Question:       q.Text,
			Round:          q.Round,
			AnswerText:     ans.AnswerText,
			Evaluation:     ans.Evaluation,
		})
	}

	utils.JSON(writer, http.StatusOK, report)
}

type progressEntry struct {
	SessionID       string       `json:"session_id"`
	CandidateName   string       `json:"candidate_name,omitempty"`
	Status          models.Status `json:"status"`
	Reason          string       `json:"reason,omitempty"`
	CurrentRound    models.Round `json:"current_round"`
	QuestionsAsked  int          `json:"questions_asked"`
	AnswersRecorded int          `json:"answers_recorded"`
	TechnicalScore  *float64     `json:"technical_score,omitempty"`
	HRScore         *float64     `json:"hr_score,omitempty"`
}

// ProgressHandler is the HR monitoring view over every attempt in a
// session group.
func (handler *InterviewHandler) ProgressHandler(writer http.ResponseWriter, request *http.Request) {
	sessionID := chi.URLParam(request, "sessionID")

	attempts, err := handler.repo.ListBySession(request.Context(), sessionID)
	if err != nil {
		utils.JSON(writer, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch session progress",
		})
		return
	}

	entries := make([]progressEntry, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		entries = append(entries, progressEntry{
			SessionID:       a.ID,
			CandidateName:   a.CandidateName,
			Status:          a.Status,
			Reason:          a.TerminationReason,
			CurrentRound:    a.CurrentRound,
			QuestionsAsked:  len(a.Questions),
			AnswersRecorded: len(a.Answers),
			TechnicalScore:  a.TechnicalScore,
			HRScore:         a.HRScore,
		})
	}

	utils.JSON(writer, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"attempts":   entries,
	})
}

type inviteRequest struct {
	Email         string `json:"email"`
	CandidateName string `json:"candidate_name"`
	JobRole       string `json:"job_role"`
}

// InviteHandler mails a candidate a one-time interview link for a
// session group.
func (handler *InterviewHandler) InviteHandler(writer http.ResponseWriter, request *http.Request) {
	sessionID := chi.URLParam(request, "sessionID")

	var req inviteRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil || req.Email == "" {
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_request",
			Message: "email is required",
		})
		return
	}

	token := uuid.New().String()
	link := fmt.Sprintf("%s/interview/%s?session=%s", strings.TrimRight(handler.publicURL, "/"), token, sessionID)

	body := fmt.Sprintf(
		"Hello %s,\n\nYou have been invited to an AI interview for the role of %s.\n\nJoin here: %s\n\nThe link is personal to you. Good luck!",
		req.CandidateName, req.JobRole, link)

	if err := utils.SendEmail(req.Email, "Your interview invitation", body); err != nil {
		handler.logger.Error("invite email failed", zap.String("session_id", sessionID), zap.Error(err))
		utils.JSON(writer, http.StatusBadGateway, models.ErrorResponse{
			Code:    "email_failed",
			Message: "Failed to send invitation email",
		})
		return
	}

	utils.JSON(writer, http.StatusCreated, map[string]string{
		"token":      token,
		"invite_url": link,
	})
}

// WebRTCConfigHandler returns the ICE servers the frontend should use.
func (handler *InterviewHandler) WebRTCConfigHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, utils.GetWebRTCConfig())
}

func (handler *InterviewHandler) attemptByToken(writer http.ResponseWriter, request *http.Request) (*models.InterviewAttempt, bool) {
	token := chi.URLParam(request, "token")
	attempt, err := handler.repo.GetByToken(request.Context(), token)
	if err != nil || attempt == nil {
		utils.JSON(writer, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No interview found for this token",
		})
		return nil, false
	}
	return attempt, true
}

func (handler *InterviewHandler) writeEngineError(writer http.ResponseWriter, err error) {
	var dep *engine.DependencyError
	switch {
	case errors.Is(err, engine.ErrInvalidConfig):
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_config",
			Message: "job_role and a positive duration_minutes are required",
		})
	case errors.Is(err, engine.ErrQuestionMismatch):
		utils.JSON(writer, http.StatusBadRequest, models.ErrorResponse{
			Code:    "question_mismatch",
			Message: "The submitted question_id is not the pending question",
		})
	case errors.Is(err, engine.ErrSessionNotFound):
		utils.JSON(writer, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "Interview session not found",
		})
	case errors.Is(err, engine.ErrSessionTerminal):
		utils.JSON(writer, http.StatusConflict, models.ErrorResponse{
			Code:    "session_terminal",
			Message: "This interview has already ended",
		})
	case errors.As(err, &dep):
		metrics.DependencyFailure(dep.Op)
		handler.logger.Error("dependency failure", zap.String("op", dep.Op), zap.Error(dep.Err))
		utils.JSON(writer, http.StatusBadGateway, models.ErrorResponse{
			Code:    "dependency_unavailable",
			Message: "A required service is unavailable, please retry",
		})
	default:
		handler.logger.Error("unhandled engine error", zap.Error(err))
		utils.JSON(writer, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Something went wrong",
		})
	}
}

// overallOf mirrors the report's headline number: mean of the rounds
// that actually had answers.
func overallOf(tech, hr engine.RoundScore) float64 {
	switch {
	case tech.QuestionsAsked > 0 && hr.QuestionsAsked > 0:
		return (tech.Score + hr.Score) / 2
	case tech.QuestionsAsked > 0:
		return tech.Score
	case hr.QuestionsAsked > 0:
		return hr.Score
	default:
		return 0
	}
}
