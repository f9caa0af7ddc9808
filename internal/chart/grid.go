package chart

import (
	"context"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Stats describes a composed chart.
type Stats struct {
	Tiles        int // tiles pasted onto the canvas
	Placeholders int // tiles whose cover could not be fetched
}

// Composer lays tiles out on a canvas in row-major order.
type Composer struct {
	Resolver  CoverResolver
	Annotator Annotator

	// Concurrency is how many covers are fetched at once. Values below 2
	// fetch covers one at a time in list order.
	Concurrency int

	Logger zerolog.Logger
}

// cursor is where the next tile is pasted.
type cursor struct {
	x, y int
}

// advance moves one tile to the right, wrapping to the start of the next
// row after the last column.
func (c *cursor) advance(canvasWidth int, tile image.Point) {
	if c.x == canvasWidth-tile.X {
		c.x = 0
		c.y += tile.Y
	} else {
		c.x += tile.X
	}
}

// tile is one resolved and annotated album, ready to paste.
type tile struct {
	img         *image.RGBA
	placeholder bool
}

// Compose renders albums onto a shape.Columns x shape.Rows grid of TileSize
// tiles. Albums beyond shape.Count() are dropped; cells without an album
// stay black.
func (c *Composer) Compose(ctx context.Context, shape Shape, albums []Album) (*image.RGBA, Stats, error) {
	size := shape.Size(TileSize)
	canvas := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if len(albums) > shape.Count() {
		c.Logger.Debug().
			Int("albums", len(albums)).
			Int("capacity", shape.Count()).
			Msg("Clipping albums to grid capacity")
		albums = albums[:shape.Count()]
	}

	var stats Stats
	pos := cursor{}
	paste := func(t tile) {
		r := image.Rectangle{Min: image.Pt(pos.x, pos.y), Max: image.Pt(pos.x, pos.y).Add(TileSize)}
		draw.Draw(canvas, r, t.img, image.Point{}, draw.Src)
		pos.advance(size.X, TileSize)

		stats.Tiles++
		if t.placeholder {
			stats.Placeholders++
		}
	}

	if c.Concurrency < 2 {
		for _, album := range albums {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			paste(c.render(ctx, album))
		}
		return canvas, stats, nil
	}

	tiles, err := c.renderAll(ctx, albums)
	if err != nil {
		return nil, stats, err
	}
	for _, t := range tiles {
		paste(t)
	}

	return canvas, stats, nil
}

// renderAll renders every album into its own tile with at most
// c.Concurrency covers in flight. Tiles are returned in album order.
func (c *Composer) renderAll(ctx context.Context, albums []Album) ([]tile, error) {
	tiles := make([]tile, len(albums))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)

	for i, album := range albums {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tiles[i] = c.render(gctx, album)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// gctx is always cancelled once Wait returns; only the caller's
	// context says whether the renders were cut short.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return tiles, nil
}

// render resolves an album's cover into a fresh tile buffer and captions it.
func (c *Composer) render(ctx context.Context, album Album) tile {
	cover := c.Resolver.Resolve(ctx, album.CoverURL)

	img := image.NewRGBA(image.Rectangle{Max: TileSize})
	draw.Draw(img, img.Bounds(), cover.Image, cover.Image.Bounds().Min, draw.Src)

	if c.Annotator != nil {
		c.Annotator.Annotate(img, album)
	}

	return tile{img: img, placeholder: cover.Placeholder}
}
