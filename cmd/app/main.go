// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-itinerary-api/internal/config"
	"travel-itinerary-api/internal/domain/ports/adapter"
	"travel-itinerary-api/internal/domain/ports/repository"
	aiAdapters "travel-itinerary-api/internal/infra/adapters/ai"
	"travel-itinerary-api/internal/infra/logging"
	"travel-itinerary-api/internal/infra/metrics"
	red "travel-itinerary-api/internal/infra/redis"
	"travel-itinerary-api/internal/infra/store"
	"travel-itinerary-api/internal/infra/web"
	"travel-itinerary-api/internal/infra/worker"
	"travel-itinerary-api/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI without a credential)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Job store (Redis when configured, in-memory otherwise) ----
	var jobs repository.JobRepository
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		jobs = red.NewJobRepo(redisClient, cfg.Redis.TTL)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("job store: redis")
	} else {
		jobs = store.NewMemoryJobRepo()
		logger.Info().Msg("job store: in-memory (single process, non-durable)")
	}

	// ---- AI adapters ----
	var (
		enrich       adapter.EnrichmentService
		complete     adapter.CompletionService
		credentialOK bool
	)
	switch {
	case cfg.AI.APIKey != "":
		enrich, err = aiAdapters.NewMaestroAdapter(cfg.AI.APIKey, cfg.AI.MaestroID, cfg.AI.BaseURL, cfg.AI.WebSearch)
		if err != nil {
			logger.Fatal().Err(err).Msg("maestro adapter")
		}
		complete, err = aiAdapters.NewJambaAdapter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("jamba adapter")
		}
		credentialOK = true
		logger.Info().Str("base", cfg.AI.BaseURL).Str("model", cfg.AI.Model).Msg("AI adapters: AI21 maestro + jamba")
	case cfg.Runtime.Dev:
		noop := aiAdapters.NewNoopAdapter()
		enrich, complete = noop, noop
		credentialOK = true
		logger.Warn().Msg("AI adapters: noop (dev mode, no credential)")
	default:
		// Boot anyway: the initiation endpoint surfaces the missing
		// credential per request, and health stays green.
		logger.Warn().Msg("AI21_API_KEY not configured; job initiation will return a configuration error")
	}

	var tokenCounter adapter.TokenCounter
	if tc, err := aiAdapters.NewTiktokenCounter(); err != nil {
		logger.Warn().Err(err).Msg("token counter unavailable")
	} else {
		tokenCounter = tc
	}

	// ---- Use cases ----
	policy := usecase.PollPolicy{Interval: cfg.AI.PollInterval, MaxAttempts: cfg.AI.PollAttempts}
	genUC := usecase.NewGenerationUseCase(jobs, enrich, complete, tokenCounter, policy, logger)

	pool := worker.NewPool(cfg.Jobs.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	jobUC := usecase.NewJobUseCase(jobs, genUC, pool, credentialOK, logger)

	// ---- Cleanup sweeper ----
	sweeper := worker.NewCleanupSweeper(jobs, cfg.Jobs.CleanupInterval, cfg.Jobs.MaxAge, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ---- HTTP ----
	server := web.NewServer(jobUC, cfg.Server.Port, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
