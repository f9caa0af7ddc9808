package chart

import (
	"errors"
	"image"
	"testing"

	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input     string
		want      Period
		wantToken lastfm.Period
		wantErr   bool
	}{
		{input: "week", want: PeriodWeek, wantToken: lastfm.Period7Day},
		{input: "WEEK", want: PeriodWeek, wantToken: lastfm.Period7Day},
		{input: "month", want: PeriodMonth, wantToken: lastfm.Period1Month},
		{input: "Month", want: PeriodMonth, wantToken: lastfm.Period1Month},
		{input: "year", want: PeriodYear, wantToken: lastfm.Period12Month},
		{input: "overall", want: PeriodOverall, wantToken: lastfm.PeriodOverall},
		{input: "OverAll", want: PeriodOverall, wantToken: lastfm.PeriodOverall},
		{input: "day", wantErr: true},
		{input: "7day", wantErr: true},
		{input: "", wantErr: true},
		{input: " week", wantErr: true},
		{input: "weekly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("ParsePeriod(%q) error = %v, want ErrInvalidPeriod", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriod(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Token() != tt.wantToken {
				t.Errorf("ParsePeriod(%q).Token() = %q, want %q", tt.input, got.Token(), tt.wantToken)
			}
		})
	}
}

func TestPeriod_String(t *testing.T) {
	for name, p := range periodNames {
		if p.String() != name {
			t.Errorf("Period(%d).String() = %q, want %q", int(p), p.String(), name)
		}
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		input   string
		want    Shape
		wantErr bool
	}{
		{input: "3x3", want: Shape{Columns: 3, Rows: 3}},
		{input: "10x5", want: Shape{Columns: 10, Rows: 5}},
		{input: "20X5", want: Shape{Columns: 20, Rows: 5}},
		{input: "1x1", want: Shape{Columns: 1, Rows: 1}},
		{input: "5x2", want: Shape{Columns: 5, Rows: 2}},
		{input: "007x08", want: Shape{Columns: 7, Rows: 8}},
		{input: "100x100", want: Shape{Columns: 100, Rows: 100}},
		{input: "0x3", wantErr: true},
		{input: "3x0", wantErr: true},
		{input: "x3", wantErr: true},
		{input: "3x", wantErr: true},
		{input: "3*3", wantErr: true},
		{input: "3x3x3", wantErr: true},
		{input: "3x3junk", wantErr: true},
		{input: "-3x3", wantErr: true},
		{input: " 3x3", wantErr: true},
		{input: "", wantErr: true},
		{input: "threexthree", wantErr: true},
		{input: "99999999999999999999x1", wantErr: true},
		{input: "4294967296x4294967296", wantErr: true},
		{input: "4611686018427387904x3", wantErr: true},
		{input: "1x4611686018427387904", wantErr: true},
		{input: "40000000000000000x1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseShape(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidShape) {
					t.Fatalf("ParseShape(%q) error = %v, want ErrInvalidShape", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseShape(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseShape(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestShape_CountAndSize(t *testing.T) {
	s := Shape{Columns: 4, Rows: 2}

	if s.Count() != 8 {
		t.Errorf("Count() = %d, want 8", s.Count())
	}
	if got := s.Size(image.Pt(300, 300)); got != image.Pt(1200, 600) {
		t.Errorf("Size() = %v, want (1200,600)", got)
	}
	if s.String() != "4x2" {
		t.Errorf("String() = %q, want 4x2", s.String())
	}
}

func TestParseShape_CountAndSizeDoNotOverflow(t *testing.T) {
	for _, input := range []string{"3037000499x3037000499", "1x30000000000000", "30000000000000x1"} {
		shape, err := ParseShape(input)
		if err != nil {
			continue
		}
		if shape.Count() <= 0 {
			t.Errorf("ParseShape(%q).Count() = %d, want positive", input, shape.Count())
		}
		if size := shape.Size(TileSize); size.X <= 0 || size.Y <= 0 {
			t.Errorf("ParseShape(%q).Size() = %v, want positive", input, size)
		}
	}
}
