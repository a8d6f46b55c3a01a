// Package cycle holds the microchallenge completion policy. Every call site
// that decides an assignment's fate (logging, progress reads, the listing
// endpoint and the nightly sweep) goes through Evaluate so the thresholds
// live in exactly one place.
package cycle

import "math"

const (
	// Cap is the nominal challenge duration in days.
	Cap = 21
	// SuccessThreshold is the fraction of the cap that must be logged for
	// an elapsed cycle to count as a success. 0.8 of 21 rounds up to 17.
	SuccessThreshold = 0.8
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusRemoved   Status = "removed"
)

// Terminal reports whether s is an end state. completed_at must be set iff
// the assignment is terminal.
func Terminal(s Status) bool {
	return s == StatusCompleted || s == StatusSuccess || s == StatusFailed || s == StatusRemoved
}

// SuccessDays returns the minimum logged days for an elapsed cycle to be a
// success: ceil(threshold * cap).
func SuccessDays(cap int, threshold float64) int {
	return int(math.Ceil(threshold * float64(cap)))
}

// Evaluate decides the status of an active assignment.
//
//   - completedDays >= cap: the user logged a full cycle, Completed.
//   - daysElapsed >= cap: the cycle window ran out; Success when enough
//     days were logged, Failed otherwise.
//   - otherwise the cycle is still running and the assignment stays Active.
func Evaluate(completedDays, daysElapsed, cap int, threshold float64) Status {
	if completedDays >= cap {
		return StatusCompleted
	}
	if daysElapsed >= cap {
		if completedDays >= SuccessDays(cap, threshold) {
			return StatusSuccess
		}
		return StatusFailed
	}
	return StatusActive
}

// Percent returns the completion percentage rounded half-up to one decimal.
// While the cycle runs it is the on-track ratio completedDays/daysElapsed;
// once the window has elapsed it becomes the cumulative completedDays/cap.
func Percent(completedDays, daysElapsed, cap int) float64 {
	var ratio float64
	if daysElapsed >= cap {
		ratio = float64(completedDays) / float64(cap)
	} else if daysElapsed > 0 {
		ratio = float64(completedDays) / float64(daysElapsed)
	}
	return math.Round(ratio*1000) / 10
}

// CumulativePercent is the listing-view percentage, min(logs, cap)/cap,
// rounded the same way as Percent.
func CumulativePercent(completedDays, cap int) float64 {
	if completedDays > cap {
		completedDays = cap
	}
	return math.Round(float64(completedDays)/float64(cap)*1000) / 10
}
