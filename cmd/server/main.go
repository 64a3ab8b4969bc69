package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harsha446-acm/ai-interview-platform/internal/config"
	"github.com/harsha446-acm/ai-interview-platform/internal/engine"
	"github.com/harsha446-acm/ai-interview-platform/internal/handlers"
	"github.com/harsha446-acm/ai-interview-platform/internal/jobs"
	"github.com/harsha446-acm/ai-interview-platform/internal/llm"
	_ "github.com/harsha446-acm/ai-interview-platform/internal/llm/gemini"
	"github.com/harsha446-acm/ai-interview-platform/internal/repositories"
	mongorepo "github.com/harsha446-acm/ai-interview-platform/internal/repositories/mongo"
	"github.com/harsha446-acm/ai-interview-platform/internal/routers"
	"github.com/harsha446-acm/ai-interview-platform/internal/signaling"
	"github.com/harsha446-acm/ai-interview-platform/internal/utils"
)

func main() {
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	repo, cleanup := buildRepository(logger)
	defer cleanup()

	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("failed to initialise AI provider", zap.Error(err))
	}
	logger.Info("AI provider ready", zap.String("provider", provider.GetProviderName()))

	engCfg := engine.DefaultConfig()
	if cfg.TechnicalQuestions > 0 {
		engCfg.TechnicalQuestions = cfg.TechnicalQuestions
	}
	if cfg.HRQuestions > 0 {
		engCfg.HRQuestions = cfg.HRQuestions
	}
	if cfg.TechnicalCutoff > 0 {
		engCfg.Thresholds.TechnicalCutoff = cfg.TechnicalCutoff
	}
	eng := engine.New(engCfg, provider, provider, repo, logger)

	// Redis fans presence events out across instances; a single instance
	// works without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	registry := signaling.NewRegistry(rdb, logger)
	defer registry.Close()

	wsHandler := signaling.NewHandler(registry, roomAuthorizer(repo), logger)

	interviewHandler := handlers.NewInterviewHandler(eng, repo, cfg.PublicURL, logger)
	healthHandler := handlers.NewHealthHandler()
	router := routers.NewRouter(interviewHandler, healthHandler, wsHandler)

	watchdog := jobs.NewExpiryWatchdog(eng, repo, os.Getenv("EXPIRY_SCHEDULE"), logger)
	if err := watchdog.Start(); err != nil {
		logger.Fatal("failed to start expiry watchdog", zap.Error(err))
	}
	defer watchdog.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}

// buildRepository connects to Mongo when MONGO_URI is set and falls back
// to the in-memory store otherwise, which keeps local development free
// of infrastructure.
func buildRepository(logger *zap.Logger) (repositories.AttemptRepository, func()) {
	if os.Getenv("MONGO_URI") == "" {
		logger.Warn("MONGO_URI not set, using in-memory attempt store")
		return repositories.NewMemoryRepository(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongorepo.NewClient(ctx)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	repo, err := mongorepo.NewAttemptRepo(client)
	if err != nil {
		logger.Fatal("failed to initialise attempt collection", zap.Error(err))
	}
	logger.Info("connected to MongoDB")

	return repo, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}

// roomAuthorizer admits candidates whose interview token owns an attempt
// in the room's session, and observers carrying a signed room token.
func roomAuthorizer(repo repositories.AttemptRepository) signaling.Authorizer {
	return func(role, token, roomID string) (string, error) {
		if role == signaling.RoleObserver {
			claims, err := utils.ValidateRoomToken(token)
			if err != nil {
				return "", err
			}
			if claims.RoomID != roomID {
				return "", errors.New("token not valid for this room")
			}
			return claims.UserID, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		attempt, err := repo.GetByToken(ctx, token)
		if err != nil || attempt == nil {
			return "", errors.New("unknown interview token")
		}
		if attempt.Terminal() {
			return "", errors.New("interview already ended")
		}
		return attempt.ID, nil
	}
}
