package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/albumgrid/internal/config"
	"github.com/jfmyers9/albumgrid/internal/history"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently rendered charts",
	Long: `Show the most recently rendered charts, newest first.

Charts rendered by the server and by the render command are both listed.
History is kept in the SQLite file named by history_db.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of charts to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("chart history is disabled (history_db is empty)")
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No charts rendered yet")
		return nil
	}

	writeHistory(cmd.OutOrStdout(), entries)
	return nil
}

// historyColumn is one column of the history table.
type historyColumn struct {
	title string
	width int
	value func(history.Entry) string
}

var historyColumns = []historyColumn{
	{"WHEN", 19, func(e history.Entry) string { return e.CreatedAt.Local().Format(time.DateTime) }},
	{"USER", 16, func(e history.Entry) string { return e.User }},
	{"PERIOD", 7, func(e history.Entry) string { return e.Period }},
	{"SHAPE", 7, func(e history.Entry) string { return e.Shape }},
	{"ALBUMS", 6, func(e history.Entry) string { return fmt.Sprintf("%d", e.Albums) }},
	{"MISSING", 7, func(e history.Entry) string { return fmt.Sprintf("%d", e.Placeholders) }},
	{"SIZE", 9, func(e history.Entry) string { return humanize.IBytes(uint64(e.Bytes)) }},
	{"TOOK", 8, func(e history.Entry) string { return e.Duration.Round(time.Millisecond).String() }},
}

// writeHistory prints entries as a fixed-width table.
func writeHistory(w io.Writer, entries []history.Entry) {
	cells := make([]string, len(historyColumns))

	for i, col := range historyColumns {
		cells[i] = padToWidth(col.title, col.width)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

	for _, e := range entries {
		for i, col := range historyColumns {
			cells[i] = padToWidth(col.value(e), col.width)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		result := runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis

		// Wide runes can leave the result one column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text // exactly the right width
}
