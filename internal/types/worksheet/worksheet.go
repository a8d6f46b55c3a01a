package worksheet

import (
	"time"

	"github.com/google/uuid"
)

// Worksheet is the identity/tiny-action installer submission. A user has at
// most one active worksheet; saving a new one completes the previous.
type Worksheet struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Status      string            `json:"status" db:"status"`
	Struggle    string            `json:"struggle" db:"struggle"`
	Identity    string            `json:"identity" db:"identity"`
	Knowledge   string            `json:"knowledge" db:"knowledge"`
	Environment map[string]string `json:"environment" db:"environment"`
	TinyAction  string            `json:"tiny_action" db:"tiny_action"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

type CreateWorksheetRequest struct {
	Struggle    string            `json:"struggle"`
	Identity    string            `json:"identity"`
	Knowledge   string            `json:"knowledge"`
	Environment map[string]string `json:"environment"`
	TinyAction  string            `json:"tinyAction"`
}

// TrackerEntry is one day's check-in against the active worksheet. Unlike
// challenge logs, tracker notes can be edited after the fact.
type TrackerEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorksheetID uuid.UUID `json:"worksheet_id" db:"worksheet_id"`
	EntryDate   time.Time `json:"date" db:"entry_date"`
	Completed   bool      `json:"completed" db:"completed"`
	Note        string    `json:"note" db:"note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type TrackEntryRequest struct {
	Date      string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
}

type EditNoteRequest struct {
	Note string `json:"note"`
}

type WeeklyReflection struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	WeekStart time.Time `json:"week_start" db:"week_start"`
	WeekEnd   time.Time `json:"week_end" db:"week_end"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
