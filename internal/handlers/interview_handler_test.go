package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harsha446-acm/ai-interview-platform/internal/engine"
	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/repositories"
)

type stubSource struct {
	calls int
	err   error
}

func (s *stubSource) NextQuestion(ctx context.Context, req engine.QuestionRequest) (*engine.GeneratedQuestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls++
	return &engine.GeneratedQuestion{
		Text:        fmt.Sprintf("question %d", s.calls),
		IdealAnswer: "ideal",
		Keywords:    []string{"index"},
	}, nil
}

type stubScorer struct {
	err error
}

func (s *stubScorer) Score(ctx context.Context, req engine.ScoreRequest) (*models.ScoreBreakdown, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ScoreBreakdown{
		ContentScore:       80,
		CommunicationScore: 80,
		ConfidenceScore:    80,
	}, nil
}

type testEnv struct {
	router http.Handler
	repo   *repositories.MemoryRepository
	source *stubSource
	scorer *stubScorer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := repositories.NewMemoryRepository()
	source := &stubSource{}
	scorer := &stubScorer{}
	eng := engine.New(engine.DefaultConfig(), source, scorer, repo, zap.NewNop())

	handler := NewInterviewHandler(eng, repo, "http://localhost:3000", zap.NewNop())

	router := chi.NewRouter()
	router.Route("/api/interview/{token}", func(r chi.Router) {
		r.Post("/start", handler.StartHandler)
		r.Post("/answer", handler.AnswerHandler)
		r.Get("/time", handler.TimeHandler)
		r.Post("/end", handler.EndHandler)
		r.Get("/report", handler.ReportHandler)
	})
	router.Get("/api/sessions/{sessionID}/progress", handler.ProgressHandler)

	return &testEnv{router: router, repo: repo, source: source, scorer: scorer}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) start(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/interview/"+token+"/start",
		`{"job_role":"Backend Engineer","duration_minutes":20,"session_id":"sess-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func questionID(t *testing.T, payload map[string]interface{}, key string) string {
	t.Helper()
	q, ok := payload[key].(map[string]interface{})
	require.True(t, ok, "expected %s in %v", key, payload)
	return q["question_id"].(string)
}

func TestStartCreatesAttempt(t *testing.T) {
	env := newTestEnv(t)

	out := env.start(t, "tok-1")
	assert.NotEmpty(t, out["session_id"])
	assert.Equal(t, "Technical", out["round"])
	assert.NotNil(t, out["question"])
}

func TestStartResumesExistingAttempt(t *testing.T) {
	env := newTestEnv(t)
	first := env.start(t, "tok-1")

	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/start", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resumed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resumed))
	assert.Equal(t, true, resumed["resumed"])
	assert.Equal(t, first["session_id"], resumed["session_id"])
	assert.Equal(t, 1, env.source.calls, "resume must not generate a new question")
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/start", `{"job_role":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_config")
}

func TestAnswerHappyPath(t *testing.T) {
	env := newTestEnv(t)
	started := env.start(t, "tok-1")
	qid := questionID(t, started, "question")

	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/answer",
		`{"question_id":"`+qid+`","answer_text":"use a composite index"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, false, out["is_complete"])
	assert.NotNil(t, out["next_question"])
	eval := out["evaluation"].(map[string]interface{})
	assert.Equal(t, 77.0, eval["overall_score"], "80/80/80 with neutral emotion")
}

func TestAnswerRejectsEmptyAnswer(t *testing.T) {
	env := newTestEnv(t)
	started := env.start(t, "tok-1")
	qid := questionID(t, started, "question")

	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/answer",
		`{"question_id":"`+qid+`","answer_text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_answer")
}

func TestAnswerRejectsWrongQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.start(t, "tok-1")

	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/answer",
		`{"question_id":"bogus","answer_text":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question_mismatch")
}

func TestAnswerUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/interview/nobody/answer",
		`{"question_id":"q","answer_text":"hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}

func TestAnswerScorerFailureIs502(t *testing.T) {
	env := newTestEnv(t)
	started := env.start(t, "tok-1")
	qid := questionID(t, started, "question")

	env.scorer.err = errors.New("model unavailable")
	rec := env.do(t, http.MethodPost, "/api/interview/tok-1/answer",
		`{"question_id":"`+qid+`","answer_text":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "dependency_unavailable")

	// the step made no state change, so the same submit succeeds on retry
	env.scorer.err = nil
	rec = env.do(t, http.MethodPost, "/api/interview/tok-1/answer",
		`{"question_id":"`+qid+`","answer_text":"hello"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.start(t, "tok-1")

	rec := env.do(t, http.MethodGet, "/api/interview/tok-1/time", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, false, status["is_expired"])
	assert.Equal(t, 20.0, status["remaining_minutes"])
}

func TestEndAndReport(t *testing.T) {
	env := newTestEnv(t)
	env.start(t, "tok-1")

	rec := env.do(t, http.MethodGet, "/api/interview/tok-1/report", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "report requires a terminal attempt")

	rec = env.do(t, http.MethodPost, "/api/interview/tok-1/end", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var final map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &final))
	assert.Equal(t, "candidate_ended", final["reason"])

	// ending again is a no-op with the same terminal state
	rec = env.do(t, http.MethodPost, "/api/interview/tok-1/end", `{"reason":"other"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidate_ended")

	rec = env.do(t, http.MethodGet, "/api/interview/tok-1/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Not Selected", report["recommendation"], "no answers means nothing to select on")
}

func TestProgressListsSessionAttempts(t *testing.T) {
	env := newTestEnv(t)
	env.start(t, "tok-1")
	env.start(t, "tok-2")

	rec := env.do(t, http.MethodGet, "/api/sessions/sess-1/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		SessionID string                   `json:"session_id"`
		Attempts  []map[string]interface{} `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "sess-1", out.SessionID)
	assert.Len(t, out.Attempts, 2)
	for _, a := range out.Attempts {
		assert.Equal(t, "in_progress", a["status"])
		assert.Equal(t, 1.0, a["questions_asked"])
	}
}
