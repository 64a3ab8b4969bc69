package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/harsha446-acm/ai-interview-platform/internal/handlers"
	"github.com/harsha446-acm/ai-interview-platform/internal/metrics"
	"github.com/harsha446-acm/ai-interview-platform/internal/signaling"
)

// NewRouter wires every endpoint onto a chi mux with the shared
// middleware stack.
func NewRouter(interview *handlers.InterviewHandler, health *handlers.HealthHandler, ws *signaling.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(metrics.Middleware("interview"))

	router.Get("/healthz", health.HealthzHandler)
	router.Get("/readyz", health.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())

	// WebSocket upgrades must not go through the request timeout.
	router.Get("/ws/interview/{roomID}", ws.ServeWS)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api/interview/{token}", func(r chi.Router) {
			r.Post("/start", interview.StartHandler)
			r.Post("/answer", interview.AnswerHandler)
			r.Get("/time", interview.TimeHandler)
			r.Post("/end", interview.EndHandler)
			r.Get("/report", interview.ReportHandler)
		})

		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/progress", interview.ProgressHandler)
			r.Post("/invite", interview.InviteHandler)
		})

		r.Get("/api/webrtc/config", interview.WebRTCConfigHandler)
	})

	return router
}
