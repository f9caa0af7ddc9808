package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/jfmyers9/albumgrid/internal/metrics"
)

// TileSize is the pixel size of every tile in a chart.
var TileSize = image.Pt(300, 300)

const (
	// DefaultCoverTimeout bounds a single cover download.
	DefaultCoverTimeout = 5 * time.Second

	// maxCoverBytes caps how much of a cover response is read.
	maxCoverBytes = 10 << 20

	// maxCoverDimension caps the declared width and height of a cover, so a
	// small file cannot claim a huge pixel buffer.
	maxCoverDimension = 4096
)

var errNoCover = errors.New("album has no cover url")

// Cover is the outcome of resolving an album cover. Image is always a
// TileSize image; Placeholder reports whether it is the fallback.
type Cover struct {
	Image       image.Image
	Placeholder bool
}

// CoverResolver turns a cover URL into a tile-sized image. It never fails;
// unreachable covers come back as the placeholder.
type CoverResolver interface {
	Resolve(ctx context.Context, coverURL string) Cover
}

// Placeholder returns a new solid black TileSize image.
func Placeholder() *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: TileSize})
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

// HTTPCoverResolver downloads covers over HTTP. Each cover gets exactly one
// attempt bounded by the client timeout.
type HTTPCoverResolver struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewHTTPCoverResolver creates a resolver whose downloads time out after
// timeout. A zero timeout uses DefaultCoverTimeout. m may be nil.
func NewHTTPCoverResolver(timeout time.Duration, logger zerolog.Logger, m *metrics.Metrics) *HTTPCoverResolver {
	if timeout <= 0 {
		timeout = DefaultCoverTimeout
	}
	return &HTTPCoverResolver{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: "albumgrid/1.0",
		logger:    logger.With().Str("component", "cover").Logger(),
		metrics:   m,
	}
}

// Resolve fetches and decodes the cover at coverURL, scaled to TileSize.
// Any failure yields the placeholder.
func (r *HTTPCoverResolver) Resolve(ctx context.Context, coverURL string) Cover {
	img, err := r.fetch(ctx, coverURL)
	if err != nil {
		r.logger.Warn().Err(err).Str("url", coverURL).Msg("Using placeholder cover")
		r.metrics.CoverFetched(metrics.CoverPlaceholder)
		return Cover{Image: Placeholder(), Placeholder: true}
	}

	r.metrics.CoverFetched(metrics.CoverOK)
	return Cover{Image: fitTile(img)}
}

func (r *HTTPCoverResolver) fetch(ctx context.Context, coverURL string) (image.Image, error) {
	if coverURL == "" {
		return nil, errNoCover
	}

	u, err := url.Parse(coverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cover url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported cover url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}
	if cfg.Width > maxCoverDimension || cfg.Height > maxCoverDimension {
		return nil, fmt.Errorf("cover is %dx%d, larger than %d pixels per side",
			cfg.Width, cfg.Height, maxCoverDimension)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	return img, nil
}

// fitTile returns img at exactly TileSize, scaling with Catmull-Rom when the
// source has a different size.
func fitTile(img image.Image) image.Image {
	if img.Bounds().Size() == TileSize {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: TileSize})
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
