package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/albumgrid/internal/config"
	"github.com/jfmyers9/albumgrid/internal/metrics"
	"github.com/jfmyers9/albumgrid/internal/server"
)

var (
	serveAddr             string
	serveHistoryRetention time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve charts over HTTP",
	Long: `Serve album charts for the configured Last.fm user.

Routes:
  GET /                        liveness greeting
  GET /api/<period>/<shape>    JPEG chart, e.g. /api/week/3x3
  GET /healthz                 health check
  GET /metrics                 Prometheus metrics

Requires LASTFM_API_KEY, LASTFM_USER and EXPIRATION_TIME, read from the
environment, a .env file or config.yaml. The server shuts down gracefully
on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config addr, :8080)")
	serveCmd.Flags().DurationVar(&serveHistoryRetention, "history-retention", 30*24*time.Hour, "Drop history entries older than this on startup (0 keeps everything)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(logFile, logLevel)

	logger.Info().
		Str("version", version).
		Str("user", cfg.LastFM.User).
		Msg("Starting albumgrid server")

	m := metrics.New(prometheus.DefaultRegisterer)

	generator, err := newGenerator(cfg, logger, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []server.Option{server.WithMetrics(m, prometheus.DefaultGatherer)}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, server.WithRecorder(store))

		if serveHistoryRetention > 0 {
			deleted, err := store.Cleanup(ctx, serveHistoryRetention)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to clean up chart history")
			} else if deleted > 0 {
				logger.Info().Int64("deleted", deleted).Msg("Cleaned up chart history")
			}
		}
		logger.Info().Str("path", cfg.HistoryDB).Msg("Recording chart history")
	}

	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		User:       cfg.LastFM.User,
		Expiration: time.Duration(cfg.ExpirationTime) * time.Second,
	}, generator, logger, opts...)

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}
