package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     float64
	}{
		{"growth", "150", "100", 50},
		{"decline", "75", "100", -25},
		{"rounding", "1", "3", -66.7},
		{"zero previous", "10", "0", 0},
		{"both zero", "0", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparisonWindows(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	curFrom, curTo, prevFrom, prevTo := ComparisonWindows(now)

	assert.Equal(t, time.Date(2024, time.February, 15, 10, 30, 0, 0, time.UTC), curFrom)
	assert.Equal(t, now, curTo)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), prevFrom)
	assert.Equal(t, curFrom, prevTo)
}
