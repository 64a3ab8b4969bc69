package repositories

import (
	"context"
	"errors"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
)

var (
	ErrNotFound = errors.New("attempt not found")
	// ErrConflict means the attempt changed since it was loaded; the
	// caller should reload and retry the step.
	ErrConflict = errors.New("attempt was modified concurrently")
)

// AttemptRepository persists interview attempts. It is a superset of the
// engine's Store interface; the extra lookups serve the HTTP boundary and
// the expiry watchdog.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, a *models.InterviewAttempt) error
	GetAttempt(ctx context.Context, id string) (*models.InterviewAttempt, error)
	UpdateAttempt(ctx context.Context, a *models.InterviewAttempt) error

	// GetByToken returns the attempt owned by a candidate token, if any.
	GetByToken(ctx context.Context, token string) (*models.InterviewAttempt, error)
	// ListBySession returns all attempts in an HR monitoring group.
	ListBySession(ctx context.Context, sessionID string) ([]models.InterviewAttempt, error)
	// ListInProgress returns every non-terminal attempt.
	ListInProgress(ctx context.Context) ([]models.InterviewAttempt, error)
}
