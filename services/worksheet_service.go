package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/analytics"
	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/types/worksheet"
)

type WorksheetService struct {
	db    *pgxpool.Pool
	track *analytics.Tracker
}

func NewWorksheetService(db *pgxpool.Pool, track *analytics.Tracker) *WorksheetService {
	return &WorksheetService{db: db, track: track}
}

// Create stores a new installer worksheet and completes any previously
// active one; a user only tracks against one worksheet at a time.
func (s *WorksheetService) Create(ctx context.Context, userID uuid.UUID, req *worksheet.CreateWorksheetRequest) (*worksheet.Worksheet, error) {
	if _, err := s.db.Exec(ctx,
		`UPDATE worksheets SET status = 'completed' WHERE user_id = $1 AND status = 'active'`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("failed to close previous worksheet: %w", err)
	}

	env, err := json.Marshal(req.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode environment: %w", err)
	}

	w := &worksheet.Worksheet{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      "active",
		Struggle:    req.Struggle,
		Identity:    req.Identity,
		Knowledge:   req.Knowledge,
		Environment: req.Environment,
		TinyAction:  req.TinyAction,
		CreatedAt:   time.Now().UTC(),
	}
	query := `
	INSERT INTO worksheets (id, user_id, status, struggle, identity, knowledge, environment, tiny_action, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.db.Exec(ctx, query,
		w.ID, w.UserID, w.Status, w.Struggle, w.Identity, w.Knowledge, env, w.TinyAction, w.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create worksheet: %w", err)
	}

	s.track.Track(userID.String(), "worksheet_saved", map[string]any{"worksheet_id": w.ID.String()})
	return w, nil
}

func (s *WorksheetService) GetActive(ctx context.Context, userID uuid.UUID) (*worksheet.Worksheet, error) {
	query := `
	SELECT id, user_id, status, struggle, identity, knowledge, environment, tiny_action, created_at
	FROM worksheets
	WHERE user_id = $1 AND status = 'active'
	ORDER BY created_at DESC
	LIMIT 1
	`
	w := &worksheet.Worksheet{}
	var env []byte
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Status, &w.Struggle, &w.Identity, &w.Knowledge, &env, &w.TinyAction, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("no active worksheet")
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	if err := json.Unmarshal(env, &w.Environment); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return w, nil
}

// TrackEntry upserts the day's check-in against the user's active worksheet.
// Unlike challenge logs, repeated submissions update the existing entry.
func (s *WorksheetService) TrackEntry(ctx context.Context, userID uuid.UUID, req *worksheet.TrackEntryRequest, today time.Time) (*worksheet.TrackerEntry, error) {
	active, err := s.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	entryDate := dateOnly(today)
	if req.Date != "" {
		entryDate, err = time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
	}

	query := `
	INSERT INTO tracker_entries (id, worksheet_id, entry_date, completed, note)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (worksheet_id, entry_date)
	DO UPDATE SET completed = EXCLUDED.completed, note = EXCLUDED.note
	RETURNING id, worksheet_id, entry_date, completed, note, created_at
	`
	e := &worksheet.TrackerEntry{}
	err = s.db.QueryRow(ctx, query, uuid.New(), active.ID, entryDate, req.Completed, req.Note).Scan(
		&e.ID, &e.WorksheetID, &e.EntryDate, &e.Completed, &e.Note, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to track entry: %w", err)
	}
	return e, nil
}

// EditNote updates the free-text note of an existing tracker entry. The
// entry must belong to one of the caller's worksheets.
func (s *WorksheetService) EditNote(ctx context.Context, userID, entryID uuid.UUID, note string) (*worksheet.TrackerEntry, error) {
	query := `
	UPDATE tracker_entries te
	SET note = $3
	FROM worksheets w
	WHERE te.id = $1 AND te.worksheet_id = w.id AND w.user_id = $2
	RETURNING te.id, te.worksheet_id, te.entry_date, te.completed, te.note, te.created_at
	`
	e := &worksheet.TrackerEntry{}
	err := s.db.QueryRow(ctx, query, entryID, userID, note).Scan(
		&e.ID, &e.WorksheetID, &e.EntryDate, &e.Completed, &e.Note, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("tracker entry %s", entryID)
		}
		return nil, fmt.Errorf("failed to edit note: %w", err)
	}
	return e, nil
}

// WeekEntries lists tracker entries for the worksheet between two dates,
// used by the weekly reflection.
func (s *WorksheetService) WeekEntries(ctx context.Context, worksheetID uuid.UUID, from, to time.Time) ([]*worksheet.TrackerEntry, error) {
	query := `
	SELECT id, worksheet_id, entry_date, completed, note, created_at
	FROM tracker_entries
	WHERE worksheet_id = $1 AND entry_date BETWEEN $2 AND $3
	ORDER BY entry_date
	`
	rows, err := s.db.Query(ctx, query, worksheetID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list tracker entries: %w", err)
	}
	defer rows.Close()

	var entries []*worksheet.TrackerEntry
	for rows.Next() {
		e := &worksheet.TrackerEntry{}
		if err := rows.Scan(&e.ID, &e.WorksheetID, &e.EntryDate, &e.Completed, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracker entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
