package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOf(t *testing.T) {
	cases := map[string]string{
		"2026-01-15T00:00:00Z": "Q1-2026",
		"2026-03-31T23:59:59Z": "Q1-2026",
		"2026-04-01T00:00:00Z": "Q2-2026",
		"2026-12-31T00:00:00Z": "Q4-2026",
	}
	for input, want := range cases {
		parsed, err := ParseRFC3339(input)
		require.NoError(t, err)
		assert.Equal(t, want, QuarterOf(parsed))
	}
}

func TestParseRFC3339RejectsDateOnly(t *testing.T) {
	_, err := ParseRFC3339("2026-01-15")
	assert.Error(t, err)
}

func TestNowRFC3339IsParseable(t *testing.T) {
	parsed, err := ParseRFC3339(NowRFC3339())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}
