package article

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Title     string    `json:"title" db:"title"`
	URL       string    `json:"url" db:"url"`
	SaveCount int       `json:"save_count" db:"save_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SavedArticle struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ArticleID uuid.UUID `json:"article_id" db:"article_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SaveResult carries the idempotent save outcome; saving twice is a 2xx
// with AlreadySaved set.
type SaveResult struct {
	AlreadySaved bool `json:"already_saved"`
	SaveCount    int  `json:"save_count"`
}
