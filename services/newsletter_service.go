package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NewsletterService struct {
	db *pgxpool.Pool
}

func NewNewsletterService(db *pgxpool.Pool) *NewsletterService {
	return &NewsletterService{db: db}
}

// Subscribe adds an email to the newsletter list. Subscribing twice is
// reported as already subscribed, not an error.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (bool, error) {
	query := `
	INSERT INTO newsletter_subscribers (id, email)
	VALUES ($1, $2)
	ON CONFLICT (email) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, query, uuid.New(), email)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}
	return tag.RowsAffected() == 0, nil
}
