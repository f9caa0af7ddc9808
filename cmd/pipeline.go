package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/albumgrid/internal/chart"
	"github.com/jfmyers9/albumgrid/internal/config"
	"github.com/jfmyers9/albumgrid/internal/history"
	"github.com/jfmyers9/albumgrid/internal/metrics"
	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

// historyTimeout bounds a single history write.
const historyTimeout = 2 * time.Second

// zerologAdapter adapts zerolog to the lastfm.Logger interface
type zerologAdapter struct {
	logger zerolog.Logger
}

func (z zerologAdapter) Debugf(format string, args ...interface{}) {
	z.logger.Debug().Msgf(format, args...)
}

// newGenerator wires the Last.fm client, cover resolver and tile renderer
// into a chart generator.
func newGenerator(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*chart.Generator, error) {
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:  cfg.LastFM.APIKey,
		BaseURL: cfg.LastFM.BaseURL,
		Logger:  zerologAdapter{logger: logger.With().Str("component", "lastfm").Logger()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	face, err := chart.LoadFace()
	if err != nil {
		return nil, err
	}

	composer := &chart.Composer{
		Resolver:    chart.NewHTTPCoverResolver(cfg.CoverTimeout, logger, m),
		Annotator:   chart.NewTileRenderer(face),
		Concurrency: cfg.CoverConcurrency,
		Logger:      logger.With().Str("component", "composer").Logger(),
	}

	return chart.NewGenerator(chart.LastFMSource{Client: client}, composer, cfg.MaxTiles, logger), nil
}

// openHistory opens the configured history store, creating its directory.
// It returns nil when history is disabled.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if cfg.HistoryDB == "" {
		return nil, nil
	}

	if cfg.HistoryDB != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// recordChart writes e to store. The chart file already exists by now, so
// an interrupt that cancelled ctx does not stop it from being logged.
func recordChart(ctx context.Context, store *history.Store, e history.Entry) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	_, err := store.Add(ctx, e)
	return err
}
