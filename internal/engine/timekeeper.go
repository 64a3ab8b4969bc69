package engine

import (
	"math"
	"time"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
)

// wrapUpWindow is how close to the end an interview is considered to be
// wrapping up; the client uses it to tell the candidate to keep answers short.
const wrapUpWindow = 2 * time.Minute

// TimeStatus is a snapshot of the interview clock. Pure data; safe to
// compute as often as callers like.
type TimeStatus struct {
	ElapsedMinutes     float64 `json:"elapsed_minutes"`
	RemainingMinutes   float64 `json:"remaining_minutes"`
	RemainingSeconds   int     `json:"remaining_seconds"`
	IsExpired          bool    `json:"is_expired"`
	IsWrapUp           bool    `json:"is_wrap_up"`
	ProgressPct        float64 `json:"progress_pct"`
	WallElapsedMinutes float64 `json:"wall_elapsed_minutes"`
}

// TimeStatusAt computes the time status of an attempt at the given instant.
// The clock runs on ACTIVE time: cumulative processing seconds spent inside
// external generation/scoring calls are subtracted from wall-clock elapsed,
// so the candidate is not billed for slow evaluation.
func TimeStatusAt(a *models.InterviewAttempt, now time.Time) TimeStatus {
	wallElapsed := now.Sub(a.StartedAt)
	activeElapsed := wallElapsed - time.Duration(a.ProcessingSeconds*float64(time.Second))
	if activeElapsed < 0 {
		activeElapsed = 0
	}

	duration := time.Duration(a.DurationMinutes) * time.Minute
	remaining := duration - activeElapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := 0.0
	if duration > 0 {
		progress = math.Min(100, round1(activeElapsed.Minutes()/duration.Minutes()*100))
	}

	return TimeStatus{
		ElapsedMinutes:     round1(activeElapsed.Minutes()),
		RemainingMinutes:   round1(remaining.Minutes()),
		RemainingSeconds:   int(remaining.Seconds()),
		IsExpired:          remaining <= 0,
		IsWrapUp:           remaining > 0 && remaining < wrapUpWindow,
		ProgressPct:        progress,
		WallElapsedMinutes: round1(wallElapsed.Minutes()),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
