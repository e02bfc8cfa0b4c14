package utils

import (
	"fmt"
	"time"
)

// NowRFC3339 returns the current UTC time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// QuarterOf returns the calendar quarter label for a date, e.g. "Q3-2026"
func QuarterOf(t time.Time) string {
	quarter := int(t.Month()-1)/3 + 1
	return fmt.Sprintf("Q%d-%d", quarter, t.Year())
}
