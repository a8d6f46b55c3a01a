package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/types/spot"
)

type SpotService struct {
	db *pgxpool.Pool
}

func NewSpotService(db *pgxpool.Pool) *SpotService {
	return &SpotService{db: db}
}

func (s *SpotService) Create(ctx context.Context, userID uuid.UUID, description string, date time.Time) (*spot.Spot, error) {
	sp := &spot.Spot{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		SpotDate:    dateOnly(date),
		CreatedAt:   time.Now().UTC(),
	}

	query := `
	INSERT INTO spots (id, user_id, description, spot_date, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, sp.ID, sp.UserID, sp.Description, sp.SpotDate, sp.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create spot: %w", err)
	}
	return sp, nil
}

func (s *SpotService) List(ctx context.Context, userID uuid.UUID) ([]*spot.Spot, error) {
	query := `
	SELECT id, user_id, description, spot_date, created_at
	FROM spots
	WHERE user_id = $1
	ORDER BY spot_date DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	defer rows.Close()

	spots := []*spot.Spot{}
	for rows.Next() {
		sp := &spot.Spot{}
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.Description, &sp.SpotDate, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spot: %w", err)
		}
		spots = append(spots, sp)
	}
	return spots, rows.Err()
}
