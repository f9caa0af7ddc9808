// Package chart builds album cover grids from a Last.fm user's top albums.
//
// The pipeline runs in a fixed order: the requested shape decides how many
// albums to fetch, the raw records are normalized, every album's cover is
// resolved (falling back to a black placeholder) and captioned, the tiles
// are laid out row by row and the canvas is encoded as JPEG.
package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

// DefaultMaxTiles bounds Shape.Count() for a single chart.
const DefaultMaxTiles = 400

// AlbumSource returns a user's top albums, most played first.
type AlbumSource interface {
	TopAlbums(ctx context.Context, user string, period Period, limit int) ([]lastfm.TopAlbum, error)
}

// LastFMSource adapts a Last.fm client to AlbumSource.
type LastFMSource struct {
	Client *lastfm.Client
}

// TopAlbums calls user.getTopAlbums with the period's API token.
func (s LastFMSource) TopAlbums(ctx context.Context, user string, period Period, limit int) ([]lastfm.TopAlbum, error) {
	top, err := s.Client.User().GetTopAlbums(ctx, lastfm.TopAlbumsParams{
		User:   user,
		Period: period.Token(),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return top.Albums, nil
}

// Request describes one chart.
type Request struct {
	User   string
	Period Period
	Shape  Shape
}

// Result is an encoded chart and what went into it.
type Result struct {
	JPEG         []byte
	Width        int
	Height       int
	Albums       int
	Placeholders int
	Duration     time.Duration
}

// Generator runs the chart pipeline.
type Generator struct {
	source   AlbumSource
	composer *Composer
	maxTiles int
	logger   zerolog.Logger
}

// NewGenerator creates a generator. maxTiles <= 0 uses DefaultMaxTiles.
func NewGenerator(source AlbumSource, composer *Composer, maxTiles int, logger zerolog.Logger) *Generator {
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}
	return &Generator{
		source:   source,
		composer: composer,
		maxTiles: maxTiles,
		logger:   logger.With().Str("component", "chart").Logger(),
	}
}

// Generate fetches req.Shape.Count() top albums and renders them.
//
// Metadata errors fail the chart; cover errors only produce placeholders.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	// Checking each side first keeps Count from overflowing.
	if req.Shape.Columns <= 0 || req.Shape.Rows <= 0 ||
		req.Shape.Columns > g.maxTiles || req.Shape.Rows > g.maxTiles ||
		req.Shape.Count() > g.maxTiles {
		return nil, fmt.Errorf("%w: %s has %d tiles, limit is %d",
			ErrInvalidShape, req.Shape, req.Shape.Count(), g.maxTiles)
	}

	records, err := g.source.TopAlbums(ctx, req.User, req.Period, req.Shape.Count())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	albums, err := Normalize(records)
	if err != nil {
		return nil, err
	}

	canvas, stats, err := g.composer.Compose(ctx, req.Shape, albums)
	if err != nil {
		return nil, fmt.Errorf("failed to compose chart: %w", err)
	}

	data, err := Encode(canvas)
	if err != nil {
		return nil, err
	}

	result := &Result{
		JPEG:         data,
		Width:        canvas.Bounds().Dx(),
		Height:       canvas.Bounds().Dy(),
		Albums:       stats.Tiles,
		Placeholders: stats.Placeholders,
		Duration:     time.Since(start),
	}

	g.logger.Info().
		Str("user", req.User).
		Stringer("period", req.Period).
		Stringer("shape", req.Shape).
		Int("albums", result.Albums).
		Int("placeholders", result.Placeholders).
		Int("bytes", len(result.JPEG)).
		Dur("duration", result.Duration).
		Msg("Chart generated")

	return result, nil
}
