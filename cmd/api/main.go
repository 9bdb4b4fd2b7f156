package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/resume-quest/internal/config"
	"github.com/jwebster45206/resume-quest/internal/handlers"
	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/internal/middleware"
	"github.com/jwebster45206/resume-quest/internal/services"
	"github.com/jwebster45206/resume-quest/internal/services/events"
	"github.com/jwebster45206/resume-quest/internal/sessions"
	"github.com/jwebster45206/resume-quest/internal/worker"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Resume Quest API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"frame_rate", cfg.FrameRate)

	campaign, err := scenario.Load(cfg.CampaignFile)
	if err != nil {
		log.Error("Failed to load campaign", "error", err, "file", cfg.CampaignFile)
		os.Exit(1)
	}
	log.Info("Campaign loaded", "name", campaign.Name, "missions", len(campaign.Missions))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	llmService, closeLLM, err := newLLMService(cfg, log)
	if err != nil {
		log.Error("Failed to create LLM service", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}
	defer closeLLM()

	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	var (
		publisher  engine.Publisher
		subscriber handlers.Subscriber
		pinger     handlers.Pinger
	)
	if cfg.RedisURL != "" {
		broadcaster, err := events.NewBroadcasterFromURL(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to connect event broadcaster", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := broadcaster.Close(); err != nil {
				log.Error("Error closing redis connection", "error", err)
			}
		}()
		publisher, subscriber, pinger = broadcaster, broadcaster, broadcaster
		log.Info("Event broadcast enabled")
	}

	manager := sessions.NewManager(campaign, sessions.Options{
		Text:      services.NewTextGenerator(llmService, log),
		Publisher: publisher,
		Logger:    log,
		TTL:       cfg.SessionTTL,
	})

	frames := worker.New(manager, cfg.FrameInterval(), log, "")
	go func() {
		if err := frames.Start(context.Background()); err != nil {
			log.Error("Frame worker stopped", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("GET /health", handlers.NewHealthHandler(manager, pinger, log))
	handlers.NewSessionHandler(manager, log).Register(mux)
	handlers.NewWSHandler(manager, cfg.FrameInterval(), log).Register(mux)
	handlers.NewEventsHandler(manager, subscriber, log).Register(mux)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket and SSE streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	frames.Stop()
	manager.CloseAll()

	log.Info("Server exited")
}

// newLLMService builds the configured backend. The returned func releases
// its resources.
func newLLMService(cfg *config.Config, log *slog.Logger) (services.LLMService, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		svc, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() { _ = svc.Close() }, nil
	case config.ProviderAnthropic:
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log), func() {}, nil
	default:
		return services.NewMockLLMAPI(), func() {}, nil
	}
}
