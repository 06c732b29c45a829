package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/seller-analytics/internal/api"
	"github.com/dvloznov/seller-analytics/internal/api/handlers"
	"github.com/dvloznov/seller-analytics/internal/app"
	"github.com/dvloznov/seller-analytics/internal/config"
	"github.com/dvloznov/seller-analytics/internal/jobs/inmemory"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/dvloznov/seller-analytics/internal/reports"
)

func main() {
	cfg, err := config.Load("api", os.Args[1:], os.Getenv)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	log := logger.NewWithOptions(os.Stdout, cfg.LogFormat, logger.ParseLevel(cfg.LogLevel))
	ctx := logger.WithContext(context.Background(), log)

	deps, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}
	defer deps.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, jobStore, inmemory.WithWorkers(cfg.Workers))
	runner := reports.NewRunner(deps.Service, deps.Writer, nil)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, logger.Component(log, "report-worker")))
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, runner.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start report workers")
	}

	handler := api.NewRouter(log,
		handlers.NewAnalyticsHandler(deps.Service),
		handlers.NewReportsHandler(jobQueue, jobStore),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreBackend).
			Msg("Starting API server")
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

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
