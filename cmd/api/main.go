package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/handlers"
	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/jobs/inmemory"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/dvloznov/statement-insights/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse command-line flags
	var (
		port    = flag.String("port", cfg.Server.Port, "HTTP server port (or set PORT env)")
		workers = flag.Int("workers", cfg.Worker.Count, "Concurrent analysis workers (or set WORKER_COUNT env)")
	)
	flag.Parse()

	log := logger.NewWithLevel(cfg.Logger.Level)
	ctx := context.Background()

	analyzer, err := pipeline.NewGeminiAnalyzer(ctx, cfg.AnalyzerConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}

	// Initialize session and job infrastructure
	sessionStore := session.NewMemoryStore()
	runner := session.NewRunner(analyzer, log)
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, *workers, jobStore, log)

	sessionsHandler := handlers.NewSessionsHandler(sessionStore, runner, jobQueue, handlers.SessionsConfig{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		TopCategories:  cfg.Dashboard.TopCategories,
	}, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, sessionsHandler.ProcessJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	if cfg.Server.APIToken == "" {
		log.Warn().Msg("No API_TOKEN configured - API is open to any caller")
	}

	handler := middleware.Chain(handlers.NewRouter(sessionsHandler, jobsHandler), log, cfg.Server.APIToken)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("model", cfg.Gemini.Model).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight analyses finish, then stop the workers.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
