package chart

import (
	"fmt"
	"image"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

// Period is the listening window a chart covers.
type Period int

const (
	PeriodWeek Period = iota + 1
	PeriodMonth
	PeriodYear
	PeriodOverall
)

var periodNames = map[string]Period{
	"week":    PeriodWeek,
	"month":   PeriodMonth,
	"year":    PeriodYear,
	"overall": PeriodOverall,
}

// ParsePeriod parses a case-insensitive period name.
// Only week, month, year and overall are accepted.
func ParsePeriod(s string) (Period, error) {
	p, ok := periodNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("%w: %q (expected week, month, year or overall)", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Token returns the Last.fm API period for p.
func (p Period) Token() lastfm.Period {
	switch p {
	case PeriodWeek:
		return lastfm.Period7Day
	case PeriodMonth:
		return lastfm.Period1Month
	case PeriodYear:
		return lastfm.Period12Month
	default:
		return lastfm.PeriodOverall
	}
}

func (p Period) String() string {
	switch p {
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	case PeriodOverall:
		return "overall"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// Shape is the grid layout of a chart.
type Shape struct {
	Columns int
	Rows    int
}

var shapePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// ParseShape parses "<columns>x<rows>", e.g. "3x3" or "10X5".
// Both dimensions must be positive, and the grid must fit in an int both
// as a tile count and as a pixel size.
func ParseShape(s string) (Shape, error) {
	m := shapePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return Shape{}, fmt.Errorf("%w: %q (expected <columns>x<rows>, e.g. 3x3)", ErrInvalidShape, s)
	}

	cols, err := strconv.Atoi(m[1])
	if err != nil {
		return Shape{}, fmt.Errorf("%w: %q: columns out of range", ErrInvalidShape, s)
	}
	rows, err := strconv.Atoi(m[2])
	if err != nil {
		return Shape{}, fmt.Errorf("%w: %q: rows out of range", ErrInvalidShape, s)
	}

	if cols == 0 || rows == 0 {
		return Shape{}, fmt.Errorf("%w: %q: dimensions must be greater than zero", ErrInvalidShape, s)
	}

	if cols > math.MaxInt/TileSize.X || rows > math.MaxInt/TileSize.Y || cols > math.MaxInt/rows {
		return Shape{}, fmt.Errorf("%w: %q: grid is too large", ErrInvalidShape, s)
	}

	return Shape{Columns: cols, Rows: rows}, nil
}

// Count is the number of tiles in the grid, which is also the number of
// albums requested from Last.fm.
func (s Shape) Count() int {
	return s.Columns * s.Rows
}

// Size returns the canvas size for tiles of the given size.
func (s Shape) Size(tile image.Point) image.Point {
	return image.Pt(s.Columns*tile.X, s.Rows*tile.Y)
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Columns, s.Rows)
}
