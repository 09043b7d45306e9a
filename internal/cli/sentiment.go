package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/perodin/parley/internal/config"
	"github.com/perodin/parley/internal/httpapi"
	"github.com/perodin/parley/internal/logging"
	"github.com/perodin/parley/internal/sentiment"
)

func newSentimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Run the sentiment analysis service",
		RunE:  runSentiment,
	}

	cmd.Flags().String("bind", "", "listen address (overrides config)")

	return cmd
}

func runSentiment(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	classifier := sentiment.NewClient(sentiment.Config{
		Endpoint:    cfg.Sentiment.Endpoint,
		Model:       cfg.Sentiment.Model,
		APIToken:    config.SentimentAPIToken(),
		HTTPTimeout: time.Duration(cfg.Sentiment.TimeoutSeconds) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Prime the remote model in the background so the first request does
	// not pay the cold-start cost.
	go func() {
		warmupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		if err := classifier.Warmup(warmupCtx); err != nil {
			log.Warn().Err(err).Msg("classifier warmup failed")
			return
		}

		log.Info().Str("model", cfg.Sentiment.Model).Msg("classifier warmed up")
	}()

	router := httpapi.NewSentimentRouter(classifier, cfg.AllowedOrigins, log)

	bind := cfg.Sentiment.Bind
	if override, _ := cmd.Flags().GetString("bind"); override != "" {
		bind = override
	}

	return httpapi.Serve(ctx, httpapi.ServerOpts{Router: router, Addr: bind, Log: log})
}
