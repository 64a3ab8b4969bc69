package repositories

import (
	"context"
	"sync"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
)

// MemoryRepository is a process-local AttemptRepository used in tests and
// when no MONGO_URI is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	attempts map[string]models.InterviewAttempt
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{attempts: make(map[string]models.InterviewAttempt)}
}

func (r *MemoryRepository) CreateAttempt(ctx context.Context, a *models.InterviewAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.attempts[a.ID]; exists {
		return ErrConflict
	}
	a.Version = 1
	r.attempts[a.ID] = deepCopy(a)
	return nil
}

func (r *MemoryRepository) GetAttempt(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := deepCopy(&a)
	return &out, nil
}

func (r *MemoryRepository) UpdateAttempt(ctx context.Context, a *models.InterviewAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.attempts[a.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != a.Version {
		return ErrConflict
	}
	a.Version++
	r.attempts[a.ID] = deepCopy(a)
	return nil
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*models.InterviewAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attempts {
		if a.CandidateToken == token {
			out := deepCopy(&a)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ListBySession(ctx context.Context, sessionID string) ([]models.InterviewAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.InterviewAttempt
	for _, a := range r.attempts {
		if a.SessionID == sessionID {
			out = append(out, deepCopy(&a))
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListInProgress(ctx context.Context) ([]models.InterviewAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.InterviewAttempt
	for _, a := range r.attempts {
		if a.Status == models.StatusInProgress {
			out = append(out, deepCopy(&a))
		}
	}
	return out, nil
}

// deepCopy detaches the slices so callers cannot mutate stored state
// through a returned attempt.
func deepCopy(a *models.InterviewAttempt) models.InterviewAttempt {
	out := *a
	out.Questions = append([]models.QuestionRecord(nil), a.Questions...)
	out.Answers = append([]models.AnswerRecord(nil), a.Answers...)
	return out
}
