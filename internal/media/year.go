package media

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ExtractYear returns the year of a loosely formatted release date, or nil
// when none can be found. It never fails.
func ExtractYear(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			y := t.Year()
			return &y
		}
	}

	if m := yearPattern.FindStringSubmatch(raw); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			return &y
		}
	}

	return nil
}

// YearFromUnix returns the UTC year of a unix timestamp. Zero means unknown.
func YearFromUnix(ts int64) *int {
	if ts == 0 {
		return nil
	}
	y := time.Unix(ts, 0).UTC().Year()
	return &y
}

// DateFromUnix formats a unix timestamp as YYYY-MM-DD, or "" for zero.
func DateFromUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}
