package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"1.234,56 €", 1234.56},
		{"12,5", 12.5},
		{"¥12800", 12800},
		{"1,000,000", 1000},
		{"1,000,000.00", 1000000},
		{"-42.5", -42.5},
		{".75", 0.75},
		{"5.", 5},
		{"1-2", 1},
		{"-", 0},
		{"", 0},
		{"N/A", 0},
		{"free", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseNumber(tt.in), 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-17", time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2024/05/17", time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"05/2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-05-17T10:30:00Z", time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)},
		{"", epoch},
		{"soon", epoch},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDate(tt.in)), "got %s", ParseDate(tt.in))
		})
	}
}
