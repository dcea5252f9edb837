package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{" 2024-01-05 ", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"January 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"Jan 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024/01/05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"sometime", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "JANUARY 5, 2024", LongDate("2024-01-05"))
	assert.Equal(t, "DECEMBER 31, 1999", LongDate("1999-12-31"))
	assert.Equal(t, "not a date", LongDate("not a date"))
	assert.Equal(t, "", LongDate(""))
}
