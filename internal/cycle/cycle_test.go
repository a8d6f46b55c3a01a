package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessDays(t *testing.T) {
	assert.Equal(t, 17, SuccessDays(Cap, SuccessThreshold))
	assert.Equal(t, 8, SuccessDays(10, 0.8))
	assert.Equal(t, 7, SuccessDays(9, 0.75))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		completedDays int
		daysElapsed   int
		want          Status
	}{
		{"first day, logged", 1, 1, StatusActive},
		{"mid cycle, on track", 10, 12, StatusActive},
		{"mid cycle, way behind", 0, 20, StatusActive},
		{"full cycle logged", 21, 21, StatusCompleted},
		{"full cycle logged late", 21, 30, StatusCompleted},
		{"elapsed at exactly threshold", 17, 21, StatusSuccess},
		{"elapsed just below threshold", 16, 21, StatusFailed},
		{"elapsed with nothing logged", 0, 21, StatusFailed},
		{"long elapsed, threshold met", 18, 40, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.completedDays, tt.daysElapsed, Cap, SuccessThreshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Once a cycle has elapsed, more elapsed days never flip the outcome back
// to active.
func TestEvaluateTerminalOnceElapsed(t *testing.T) {
	for elapsed := Cap; elapsed <= Cap*3; elapsed++ {
		for logged := 0; logged <= Cap; logged++ {
			got := Evaluate(logged, elapsed, Cap, SuccessThreshold)
			assert.True(t, Terminal(got), "elapsed=%d logged=%d gave %s", elapsed, logged, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, Terminal(StatusActive))
	assert.True(t, Terminal(StatusCompleted))
	assert.True(t, Terminal(StatusSuccess))
	assert.True(t, Terminal(StatusFailed))
	assert.True(t, Terminal(StatusRemoved))
}

func TestPercent(t *testing.T) {
	// Elapsed-proportional while running.
	assert.InDelta(t, 100.0, Percent(3, 3, Cap), 0.001)
	assert.InDelta(t, 50.0, Percent(5, 10, Cap), 0.001)
	// 2/3 rounds half-up to one decimal.
	assert.InDelta(t, 66.7, Percent(2, 3, Cap), 0.001)
	// Cumulative once the window elapsed.
	assert.InDelta(t, 81.0, Percent(17, 21, Cap), 0.001)
	assert.InDelta(t, 100.0, Percent(21, 21, Cap), 0.001)
	// No elapsed days yet.
	assert.InDelta(t, 0.0, Percent(0, 0, Cap), 0.001)
}

func TestCumulativePercent(t *testing.T) {
	assert.InDelta(t, 100.0, CumulativePercent(21, Cap), 0.001)
	assert.InDelta(t, 100.0, CumulativePercent(25, Cap), 0.001)
	assert.InDelta(t, 81.0, CumulativePercent(17, Cap), 0.001)
	assert.InDelta(t, 0.0, CumulativePercent(0, Cap), 0.001)
}
