package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/albumgrid/internal/chart"
	"github.com/jfmyers9/albumgrid/internal/config"
	"github.com/jfmyers9/albumgrid/internal/history"
)

var (
	renderOutput string
	renderUser   string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <period> <shape>",
	Short: "Render a chart to a file",
	Long: `Render a single chart without starting the HTTP server.

Examples:
  albumgrid render week 3x3
  albumgrid render overall 10x5 -o overall.jpg
  albumgrid render month 4x4 --user someone_else`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "chart.jpg", "Output file")
	renderCmd.Flags().StringVar(&renderUser, "user", "", "Last.fm user (default: LASTFM_USER)")
}

func runRender(cmd *cobra.Command, args []string) error {
	period, err := chart.ParsePeriod(args[0])
	if err != nil {
		return err
	}
	shape, err := chart.ParseShape(args[1])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	user := renderUser
	if user == "" {
		user = cfg.LastFM.User
	}
	if cfg.LastFM.APIKey == "" || user == "" {
		return fmt.Errorf("Last.fm not configured: set LASTFM_API_KEY and LASTFM_USER (or pass --user)")
	}

	logger := setupLogger(logFile, logLevel)

	generator, err := newGenerator(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := chart.Request{User: user, Period: period, Shape: shape}
	result, err := generator.Generate(ctx, req)
	if err != nil {
		return err
	}

	if err := os.WriteFile(renderOutput, result.JPEG, 0644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	store, err := openHistory(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Chart history unavailable")
	} else if store != nil {
		defer store.Close()
		err := recordChart(ctx, store, history.Entry{
			User:         user,
			Period:       period.String(),
			Shape:        shape.String(),
			Albums:       result.Albums,
			Placeholders: result.Placeholders,
			Bytes:        len(result.JPEG),
			Duration:     result.Duration,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to record chart history")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %d albums, %d without cover)\n",
		renderOutput, result.Width, result.Height, result.Albums, result.Placeholders)
	return nil
}
