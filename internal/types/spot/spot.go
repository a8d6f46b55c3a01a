package spot

import (
	"time"

	"github.com/google/uuid"
)

// Spot is a daily "caveman spot" awareness log.
type Spot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Description string    `json:"description" db:"description"`
	SpotDate    time.Time `json:"date" db:"spot_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateSpotRequest struct {
	Description string `json:"description"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}
