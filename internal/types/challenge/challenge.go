package challenge

import (
	"time"

	"github.com/google/uuid"

	"cavemindAPI/internal/cycle"
)

// Definition is an immutable catalog entry. Rows are created by the seed
// process and never mutated by users.
type Definition struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Intro        []string  `json:"intro" db:"intro"`
	Instructions []string  `json:"instructions" db:"instructions"`
	Why          string    `json:"why" db:"why"`
	Tips         []string  `json:"tips" db:"tips"`
	Closing      string    `json:"closing" db:"closing"`
	WeekNumber   *int      `json:"week_number,omitempty" db:"week_number"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Assignment is one user's attempt at a definition. Status only ever moves
// forward: active -> completed | success | failed | removed.
type Assignment struct {
	ID          uuid.UUID    `json:"assignment_id" db:"id"`
	UserID      uuid.UUID    `json:"user_id" db:"user_id"`
	ChallengeID uuid.UUID    `json:"challenge_id" db:"challenge_id"`
	Status      cycle.Status `json:"status" db:"status"`
	StartedAt   time.Time    `json:"started_at" db:"started_at"`
	CompletedAt *time.Time   `json:"completed_at" db:"completed_at"`
}

type LogEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AssignmentID uuid.UUID `json:"assignment_id" db:"assignment_id"`
	ChallengeID  uuid.UUID `json:"challenge_id" db:"challenge_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	LogDate      time.Time `json:"log_date" db:"log_date"`
	Note         string    `json:"note" db:"note"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type LogTodayRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Note         string    `json:"note"`
}

// LogTodayResult distinguishes a first-time log from the idempotent
// already-logged case; both are delivered as a 2xx response.
type LogTodayResult struct {
	AlreadyLogged bool         `json:"already_logged"`
	Progress      float64      `json:"progress"`
	Status        cycle.Status `json:"status"`
}

type NoteEntry struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

type Progress struct {
	AssignmentID  uuid.UUID    `json:"assignment_id"`
	Status        cycle.Status `json:"status"`
	CompletedDays int          `json:"completed_days"`
	DaysElapsed   int          `json:"days_elapsed"`
	SuccessRatio  float64      `json:"success_ratio"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at"`
	Notes         []NoteEntry  `json:"notes"`
}

// Assigned is an assignment joined with its definition for the listing view.
type Assigned struct {
	Assignment
	Title        string   `json:"title"`
	Intro        []string `json:"intro"`
	Instructions []string `json:"instructions"`
	Why          string   `json:"why"`
	Tips         []string `json:"tips"`
	Closing      string   `json:"closing"`
	Progress     float64  `json:"progress"`
}

// Active is the active-assignment view returned by /challenges/active.
type Active struct {
	Assignment
	Challenge Definition `json:"challenge"`
}
