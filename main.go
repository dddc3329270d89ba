package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	"github.com/legalvoice-orchestrator/server/internal/agent/repo"
	"github.com/legalvoice-orchestrator/server/internal/apiclient"
	"github.com/legalvoice-orchestrator/server/internal/core"
	"github.com/legalvoice-orchestrator/server/internal/server"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
	pkgredis "github.com/legalvoice-orchestrator/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        int    `envconfig:"PORT" default:"6000"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Synthesis    model.SynthesisModelConfig
	Conversation model.ConversationConfig

	// Upstream APIs
	LegalAPI   model.LegalAPIConfig
	BackendAPI model.BackendAPIConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(envCfg.Environment),
		Level:       envCfg.LogLevel,
	})

	sessions, callLog, closeRedis := buildStores(ctx, envCfg)
	defer closeRedis()

	legal := apiclient.NewLegalClient(envCfg.LegalAPI, apiclient.WithCallLog(callLog))
	backend := apiclient.NewBackendClient(envCfg.BackendAPI, apiclient.WithCallLog(callLog))

	runner, err := graph.BuildRunner(ctx, graph.Config{
		APIKey:          envCfg.APIKey,
		BaseURL:         envCfg.BaseURL,
		ClassifierModel: envCfg.Classifier,
		SynthesisModel:  envCfg.Synthesis,
		Conversation:    envCfg.Conversation,
		LegalAPI:        envCfg.LegalAPI,
		Analytics:       legal,
		Directory:       backend,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build dialogue graph")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", envCfg.Port),
		Handler:           server.New(runner, sessions, callLog, envCfg.Conversation).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", srv.Addr).Str("environment", envCfg.Environment).Msg("Starting server")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-shutdown:
		logx.Info().Str("signal", sig.String()).Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("Graceful shutdown failed")
			_ = srv.Close()
		}
		logx.Info().Msg("Server stopped")
	}
}

// buildStores returns Redis-backed stores when REDIS_URL is set and
// in-memory ones otherwise.
func buildStores(ctx context.Context, cfg AppConfig) (model.SessionStore, model.APICallLogRepository, func()) {
	if !cfg.Redis.Enabled() {
		logx.Warn().Msg("REDIS_URL not set, sessions and API call logs are kept in memory")
		return repo.NewMemorySessionStore(cfg.Conversation.ParsedTTL()),
			repo.NewMemoryAPICallLogRepository(cfg.Conversation.ParsedAPICallLogTTL()),
			func() {}
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	logx.Info().Msg("Connected to Redis successfully")

	return repo.NewRedisSessionStore(rdb, cfg.Conversation.ParsedTTL()),
		repo.NewRedisAPICallLogRepository(rdb, cfg.Conversation.ParsedAPICallLogTTL()),
		func() { _ = rdb.Close() }
}
