package content

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var upper = cases.Upper(language.English)

// ParseDate parses the date formats that appear in post metadata.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LongDate formats a date as "JANUARY 5, 2024". Dates that cannot be
// parsed are returned unchanged.
func LongDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return upper.String(t.Format("January 2, 2006"))
}
