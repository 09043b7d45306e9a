package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/perodin/parley/internal/chat"
	"github.com/perodin/parley/internal/config"
	"github.com/perodin/parley/internal/httpapi"
	"github.com/perodin/parley/internal/logging"
	"github.com/perodin/parley/internal/metrics"
	"github.com/perodin/parley/internal/provider"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversational AI service",
		RunE:  runServe,
	}

	cmd.Flags().String("bind", "", "listen address (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)
	aggregator := metrics.NewAggregator()

	var generator provider.Generator

	apiKey := config.GeminiAPIKey()
	if apiKey == "" {
		log.Warn().Msgf("%s not set, chat endpoint will report unavailable", config.GeminiKeyEnv)
	} else {
		generator = provider.NewGeminiProvider(provider.GeminiConfig{
			Endpoint:    cfg.Chat.Endpoint,
			Model:       cfg.Chat.Model,
			APIKey:      apiKey,
			Temperature: cfg.Chat.Temperature,
			MaxTokens:   cfg.Chat.MaxTokens,
			HTTPTimeout: time.Duration(cfg.Chat.TimeoutSeconds) * time.Second,
		})
		log.Info().Str("model", cfg.Chat.Model).Msg("conversational model configured")
	}

	service := chat.NewService(generator, aggregator, cfg.Chat.SystemPrompt, log)
	router := httpapi.NewChatRouter(service, aggregator, cfg.AllowedOrigins, log)

	bind := cfg.Chat.Bind
	if override, _ := cmd.Flags().GetString("bind"); override != "" {
		bind = override
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return httpapi.Serve(ctx, httpapi.ServerOpts{Router: router, Addr: bind, Log: log})
}
