package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
		want  time.Time
	}{
		{"date only", "2023-01-15", true, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"datetime", "2023-01-15 08:30:00", true, time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"surrounding whitespace", " 2023-01-15 ", true, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", false, time.Time{}},
		{"garbage", "next tuesday", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.value)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Time)
			}
		})
	}
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 12.5, parseNumeric("12.5").Float64)
	assert.True(t, parseNumeric("0").Valid)
	assert.False(t, parseNumeric("").Valid)
	assert.False(t, parseNumeric("n/a").Valid)
}

func TestNullableString(t *testing.T) {
	assert.Equal(t, "DHL", nullableString("DHL").String)
	assert.False(t, nullableString("").Valid)
	assert.False(t, nullableString("   ").Valid)
}
