package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/cache"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/database"
	"github.com/stemsi/classwork-backend/internal/handler"
	"github.com/stemsi/classwork-backend/internal/logger"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/router"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/storage"
	"github.com/stemsi/classwork-backend/internal/validator"
	"github.com/stemsi/classwork-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Classwork Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Open File Storage ─────────────────────────────────────────────
	store, err := storage.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL, cfg.JWTSecret, cfg.SignedURLTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	linkRepo := repository.NewShareableLinkRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Redis Helpers ──────────────────────────────────────
	payloadCache := cache.NewAssignmentCache(rdb, cfg.PayloadCacheTTL)
	viewQueue := cache.NewViewQueue(rdb)
	feed := cache.NewSubmissionFeed(rdb)
	tokenStore := cache.NewTokenStore(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, tokenStore, log)
	userService := service.NewUserService(userRepo, authService, log)
	mediaService := service.NewMediaService(store, cfg.MaxUploadBytes, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, questionRepo, attachmentRepo, mediaService, payloadCache, log)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, questionRepo, attachmentRepo, mediaService, feed, log)
	linkService := service.NewLinkService(linkRepo, assignmentRepo, assignmentService, viewQueue, cfg.ShareLinkBaseURL, log)
	classService := service.NewClassService(classRepo)
	subjectService := service.NewSubjectService(subjectRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	healthChecks := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Assignment: handler.NewAssignmentHandler(assignmentService),
		Question:   handler.NewQuestionHandler(assignmentService, question.Default),
		Submission: handler.NewSubmissionHandler(submissionService),
		Link:       handler.NewLinkHandler(linkService),
		Media:      handler.NewMediaHandler(mediaService, store),
		WS:         handler.NewWSHandler(feed, assignmentService, log, cfg.AllowedOrigins),
		Class:      handler.NewClassHandler(classService),
		Subject:    handler.NewSubjectHandler(subjectService),
		User:       handler.NewUserHandler(userService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		System:     handler.NewSystemHandler(healthChecks, viewQueue.Len, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	viewWorker := worker.NewViewCountWorker(viewQueue, linkRepo, log)
	workerDone := make(chan struct{})
	go func() {
		viewWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published assignments into Redis BEFORE accepting traffic.
	if err := assignmentService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, store.BucketDir(storage.BucketMedia), log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the view batch to flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("View count worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
