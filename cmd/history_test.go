package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/albumgrid/internal/history"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "rj",
			width:    0,
			expected: "rj",
		},
		{
			name:     "pad short text with spaces",
			input:    "3x3",
			width:    7,
			expected: "3x3    ",
		},
		{
			name:     "exact width unchanged",
			input:    "overall",
			width:    7,
			expected: "overall",
		},
		{
			name:     "truncate long user name with ellipsis",
			input:    "a_very_long_lastfm_username",
			width:    16,
			expected: "a_very_long_l...",
		},
		{
			name:     "handle wide characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate wide characters",
			input:    "日本語のユーザー名",
			width:    10,
			expected: "日本語... ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				if w := runewidth.StringWidth(result); w != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, w, tt.width)
				}
			}
		})
	}
}

func TestWriteHistory(t *testing.T) {
	entries := []history.Entry{
		{
			User:         "rj",
			Period:       "week",
			Shape:        "3x3",
			Albums:       9,
			Placeholders: 1,
			Bytes:        204800,
			Duration:     1234 * time.Millisecond,
			CreatedAt:    time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local),
		},
		{
			User:      "日本のユーザー",
			Period:    "overall",
			Shape:     "10x10",
			Albums:    100,
			Bytes:     512,
			Duration:  2 * time.Second,
			CreatedAt: time.Date(2026, 2, 28, 8, 0, 0, 0, time.Local),
		},
	}

	var buf bytes.Buffer
	writeHistory(&buf, entries)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}

	if !strings.HasPrefix(lines[0], "WHEN") || !strings.Contains(lines[0], "MISSING") {
		t.Errorf("unexpected header: %q", lines[0])
	}

	for _, want := range []string{"2026-03-01 12:30:00", "rj", "week", "3x3", "200 KiB", "1.234s"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}

	// Columns line up in display width even with wide characters.
	userCol := runewidth.StringWidth(padToWidth("", 19) + "  ")
	periodCol := userCol + 16 + 2
	for _, line := range lines[1:] {
		prefix := runewidth.Truncate(line, periodCol, "")
		if runewidth.StringWidth(prefix) != periodCol {
			t.Errorf("row %q: period column does not start at display column %d", line, periodCol)
		}
	}
	if got := runewidth.Truncate(lines[2], periodCol+7, ""); !strings.HasSuffix(got, "overall") {
		t.Errorf("expected period column to read overall, got %q", got)
	}
	if !strings.Contains(lines[2], "512 B") {
		t.Errorf("row %q missing size 512 B", lines[2])
	}
}
