package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/types/nudge"
)

func TestDaysElapsed(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, daysElapsed(start, start))
	// Same calendar day, later hour.
	assert.Equal(t, 1, daysElapsed(start, time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)))
	// The next morning is day 2 even if fewer than 24 hours passed.
	assert.Equal(t, 2, daysElapsed(start, time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)))
	assert.Equal(t, 21, daysElapsed(start, time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 22, daysElapsed(start, time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 3, 1, 18, 45, 12, 99, time.FixedZone("UTC+3", 3*3600))
	got := dateOnly(ts)

	// 18:45 UTC+3 is 15:45 UTC, so the UTC calendar day is March 1st.
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestPickRandom(t *testing.T) {
	_, err := pickRandom(nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	only := &nudge.Nudge{Title: "one"}
	got, err := pickRandom([]*nudge.Nudge{only})
	assert.NoError(t, err)
	assert.Same(t, only, got)

	pool := []*nudge.Nudge{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	for i := 0; i < 50; i++ {
		picked, err := pickRandom(pool)
		assert.NoError(t, err)
		assert.Contains(t, pool, picked)
	}
}
