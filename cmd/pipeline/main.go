// Package main provides the entrypoint for the aridwatch data pipeline.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aridwatch/aridwatch/internal/config"
	"github.com/aridwatch/aridwatch/internal/database"
	"github.com/aridwatch/aridwatch/internal/openmeteo"
	"github.com/aridwatch/aridwatch/internal/pipeline"
	"github.com/aridwatch/aridwatch/internal/scheduler"
	"github.com/aridwatch/aridwatch/internal/store"
	"github.com/aridwatch/aridwatch/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aridwatch-pipeline"

	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		errLog.Fatal().Err(err).Msg("configuration error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting aridwatch pipeline")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	pool, err := database.Connect(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("database connected")

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Store:   store.NewPostgres(pool),
		Fetcher: openmeteo.NewClient(openmeteo.ClientConfig{}),
		Logger:  log,
		Tracer:  tp.Tracer,
	})

	if cfg.RunInterval == 0 {
		if _, err := runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("pipeline run failed")
			os.Exit(1)
		}
		return
	}

	runLoop(ctx, cfg, log, runner)
}

// runLoop keeps the process alive, running the pipeline every interval and
// serving health and status endpoints for the orchestrator.
func runLoop(ctx context.Context, cfg config.Config, log zerolog.Logger, runner *pipeline.Runner) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu         sync.RWMutex
		lastResult *pipeline.RunResult
		lastErr    error
	)

	sched := scheduler.New(cfg.RunInterval, func(ctx context.Context) {
		result, err := runner.Run(ctx)
		mu.Lock()
		lastResult, lastErr = result, err
		mu.Unlock()
		if err != nil {
			log.Error().Err(err).Msg("pipeline run failed")
		}
	}, log)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})
	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		result, err := lastResult, lastErr
		mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(result)
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("status server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("status server forced to shutdown")
	}
}
