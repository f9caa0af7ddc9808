package chart

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// FontSize is the pixel size of tile captions.
	FontSize = 16

	// LineHeight is the vertical offset between the artist and title lines.
	LineHeight = 16
)

// LoadFace parses the embedded Go Mono font at FontSize. Call it once at
// startup and share the face through a TileRenderer.
func LoadFace() (font.Face, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}

	return face, nil
}

// Annotator writes an album's caption onto its tile.
type Annotator interface {
	Annotate(tile draw.Image, album Album) draw.Image
}

// TileRenderer draws the artist and album title in white at the top-left of
// a tile. Text is neither wrapped nor truncated.
type TileRenderer struct {
	// opentype faces cache glyphs and are not safe for concurrent use.
	mu   sync.Mutex
	face font.Face
	src  image.Image
}

// NewTileRenderer creates a renderer drawing with face.
func NewTileRenderer(face font.Face) *TileRenderer {
	return &TileRenderer{
		face: face,
		src:  image.NewUniform(color.White),
	}
}

// Annotate draws album.Artist on the first line and album.Title on the
// second, mutating and returning tile.
func (r *TileRenderer) Annotate(tile draw.Image, album Album) draw.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	origin := tile.Bounds().Min
	ascent := r.face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  tile,
		Src:  r.src,
		Face: r.face,
	}

	d.Dot = fixed.P(origin.X, origin.Y+ascent)
	d.DrawString(album.Artist)

	d.Dot = fixed.P(origin.X, origin.Y+LineHeight+ascent)
	d.DrawString(album.Title)

	return tile
}
