package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/resume-quest/internal/config"
	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/internal/services"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
)

// The console runs a single session in-process and draws it in the
// terminal. It reads the same environment as the API server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Log lines would scribble over the UI.
	log := logger.Discard()

	campaign, err := scenario.Load(cfg.CampaignFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load campaign: %v\n", err)
		os.Exit(1)
	}

	llm, err := newLLMService(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM service: %v\n", err)
		os.Exit(1)
	}
	if err := llm.InitModel(context.Background(), cfg.ModelName); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize LLM model: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(campaign, engine.Options{
		Logger: log,
		Text:   services.NewTextGenerator(llm, log),
	})
	defer eng.Close()

	p := tea.NewProgram(NewConsoleUI(eng, campaign.Name),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func newLLMService(cfg *config.Config, log *slog.Logger) (services.LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.ModelName, log)
	case config.ProviderAnthropic:
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log), nil
	default:
		return services.NewMockLLMAPI(), nil
	}
}
