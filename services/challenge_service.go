package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/analytics"
	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/cycle"
	"cavemindAPI/internal/types/challenge"
)

// ChallengeService owns the microchallenge progress engine: assignment
// lifecycle, idempotent daily logging and cycle finalization. Every status
// decision goes through cycle.Evaluate.
type ChallengeService struct {
	db    *pgxpool.Pool
	track *analytics.Tracker
}

func NewChallengeService(db *pgxpool.Pool, track *analytics.Tracker) *ChallengeService {
	return &ChallengeService{db: db, track: track}
}

func (s *ChallengeService) ListAll(ctx context.Context) ([]*challenge.Definition, error) {
	query := `
	SELECT id, title, intro, instructions, why, tips, closing, week_number, created_at
	FROM challenge_definitions
	ORDER BY created_at
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var defs []*challenge.Definition
	for rows.Next() {
		d := &challenge.Definition{}
		if err := rows.Scan(&d.ID, &d.Title, &d.Intro, &d.Instructions, &d.Why, &d.Tips, &d.Closing, &d.WeekNumber, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

func (s *ChallengeService) GetDefinition(ctx context.Context, challengeID uuid.UUID) (*challenge.Definition, error) {
	query := `
	SELECT id, title, intro, instructions, why, tips, closing, week_number, created_at
	FROM challenge_definitions
	WHERE id = $1
	`
	d := &challenge.Definition{}
	err := s.db.QueryRow(ctx, query, challengeID).Scan(
		&d.ID, &d.Title, &d.Intro, &d.Instructions, &d.Why, &d.Tips, &d.Closing, &d.WeekNumber, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("challenge %s", challengeID)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return d, nil
}

// Assign starts a challenge for the user. The partial unique index on
// (user_id) WHERE status='active' makes a racing second request lose with a
// conflict instead of producing two active rows.
func (s *ChallengeService) Assign(ctx context.Context, userID, challengeID uuid.UUID) (*challenge.Assignment, error) {
	if _, err := s.GetDefinition(ctx, challengeID); err != nil {
		return nil, err
	}

	a := &challenge.Assignment{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      cycle.StatusActive,
		StartedAt:   time.Now().UTC(),
	}
	query := `
	INSERT INTO user_challenges (id, user_id, challenge_id, status, started_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, a.ID, a.UserID, a.ChallengeID, a.Status, a.StartedAt); err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("you already have an active challenge: %w", apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to assign challenge: %w", err)
	}

	s.track.Track(userID.String(), "challenge_assigned", map[string]any{"challenge_id": challengeID.String()})
	return a, nil
}

// GetActive returns the user's active assignment joined with its definition.
func (s *ChallengeService) GetActive(ctx context.Context, userID uuid.UUID) (*challenge.Active, error) {
	query := `
	SELECT uc.id, uc.user_id, uc.challenge_id, uc.status, uc.started_at, uc.completed_at,
	       cd.id, cd.title, cd.intro, cd.instructions, cd.why, cd.tips, cd.closing, cd.week_number, cd.created_at
	FROM user_challenges uc
	JOIN challenge_definitions cd ON cd.id = uc.challenge_id
	WHERE uc.user_id = $1 AND uc.status = 'active'
	`
	a := &challenge.Active{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.ChallengeID, &a.Status, &a.StartedAt, &a.CompletedAt,
		&a.Challenge.ID, &a.Challenge.Title, &a.Challenge.Intro, &a.Challenge.Instructions,
		&a.Challenge.Why, &a.Challenge.Tips, &a.Challenge.Closing, &a.Challenge.WeekNumber, &a.Challenge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("no active challenge")
		}
		return nil, fmt.Errorf("failed to get active challenge: %w", err)
	}
	return a, nil
}

// Remove marks the active assignment removed. Assignments are never deleted.
func (s *ChallengeService) Remove(ctx context.Context, userID, assignmentID uuid.UUID) error {
	query := `
	UPDATE user_challenges
	SET status = 'removed', completed_at = NOW()
	WHERE id = $1 AND user_id = $2 AND status = 'active'
	`
	tag, err := s.db.Exec(ctx, query, assignmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("active challenge %s", assignmentID)
	}
	return nil
}

// LogToday records the daily check-in. A second submission for the same day
// is a no-op reported as already_logged (the UNIQUE (assignment_id, log_date)
// constraint also absorbs racing submissions). After a first-time insert the
// assignment is re-evaluated and finalized if the cycle policy says so.
func (s *ChallengeService) LogToday(ctx context.Context, userID uuid.UUID, req *challenge.LogTodayRequest, today time.Time) (*challenge.LogTodayResult, error) {
	a, err := s.ownedAssignment(ctx, userID, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != cycle.StatusActive {
		return nil, apperr.NotFoundf("active assignment %s", req.AssignmentID)
	}

	logDate := dateOnly(today)
	insert := `
	INSERT INTO challenge_logs (id, assignment_id, challenge_id, user_id, log_date, note)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (assignment_id, log_date) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, insert, uuid.New(), a.ID, a.ChallengeID, userID, logDate, req.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to insert log: %w", err)
	}

	completedDays, err := s.countLogs(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	result := &challenge.LogTodayResult{
		AlreadyLogged: tag.RowsAffected() == 0,
		Progress:      cycle.CumulativePercent(completedDays, cycle.Cap),
		Status:        a.Status,
	}
	if result.AlreadyLogged {
		return result, nil
	}

	daysElapsed := daysElapsed(a.StartedAt, today)
	if status := cycle.Evaluate(completedDays, daysElapsed, cycle.Cap, cycle.SuccessThreshold); status != cycle.StatusActive {
		if err := s.finalize(ctx, a.ID, status); err != nil {
			return nil, err
		}
		result.Status = status
	}

	s.track.Track(userID.String(), "challenge_logged", map[string]any{"assignment_id": a.ID.String()})
	return result, nil
}

// GetProgress computes the current ratio and lazily finalizes an elapsed
// cycle on read.
func (s *ChallengeService) GetProgress(ctx context.Context, userID, assignmentID uuid.UUID, today time.Time) (*challenge.Progress, error) {
	a, err := s.ownedAssignment(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}

	notes, err := s.logNotes(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	completedDays := len(notes)
	elapsed := daysElapsed(a.StartedAt, today)

	if a.Status == cycle.StatusActive {
		if status := cycle.Evaluate(completedDays, elapsed, cycle.Cap, cycle.SuccessThreshold); status != cycle.StatusActive {
			if err := s.finalize(ctx, a.ID, status); err != nil {
				return nil, err
			}
			a.Status = status
			now := time.Now().UTC()
			a.CompletedAt = &now
		}
	}

	return &challenge.Progress{
		AssignmentID:  a.ID,
		Status:        a.Status,
		CompletedDays: completedDays,
		DaysElapsed:   elapsed,
		SuccessRatio:  cycle.Percent(completedDays, elapsed, cycle.Cap),
		StartedAt:     a.StartedAt,
		CompletedAt:   a.CompletedAt,
		Notes:         notes,
	}, nil
}

// ListAssigned returns every assignment with its definition and progress,
// opportunistically finalizing any that the cycle policy says are done.
func (s *ChallengeService) ListAssigned(ctx context.Context, userID uuid.UUID, today time.Time) ([]*challenge.Assigned, error) {
	query := `
	SELECT uc.id, uc.user_id, uc.challenge_id, uc.status, uc.started_at, uc.completed_at,
	       cd.title, cd.intro, cd.instructions, cd.why, cd.tips, cd.closing,
	       (SELECT COUNT(*) FROM challenge_logs cl WHERE cl.assignment_id = uc.id) AS log_count
	FROM user_challenges uc
	JOIN challenge_definitions cd ON cd.id = uc.challenge_id
	WHERE uc.user_id = $1
	ORDER BY uc.started_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var out []*challenge.Assigned
	logCounts := make(map[uuid.UUID]int)
	for rows.Next() {
		item := &challenge.Assigned{}
		var logCount int
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ChallengeID, &item.Status, &item.StartedAt, &item.CompletedAt,
			&item.Title, &item.Intro, &item.Instructions, &item.Why, &item.Tips, &item.Closing,
			&logCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		item.Progress = cycle.CumulativePercent(logCount, cycle.Cap)
		logCounts[item.ID] = logCount
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range out {
		if item.Status != cycle.StatusActive {
			continue
		}
		elapsed := daysElapsed(item.StartedAt, today)
		if status := cycle.Evaluate(logCounts[item.ID], elapsed, cycle.Cap, cycle.SuccessThreshold); status != cycle.StatusActive {
			if err := s.finalize(ctx, item.ID, status); err != nil {
				log.Printf("challenge: failed to finalize %s during listing: %v", item.ID, err)
				continue
			}
			item.Status = status
			now := time.Now().UTC()
			item.CompletedAt = &now
		}
	}
	return out, nil
}

// FinalizeExpired is the scheduled sweep: any active assignment whose cycle
// window has elapsed reaches a terminal state without waiting for a read.
func (s *ChallengeService) FinalizeExpired(ctx context.Context, today time.Time) (int, error) {
	query := `
	SELECT uc.id, uc.started_at,
	       (SELECT COUNT(*) FROM challenge_logs cl WHERE cl.assignment_id = uc.id) AS log_count
	FROM user_challenges uc
	WHERE uc.status = 'active'
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to scan active assignments: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		id            uuid.UUID
		completedDays int
		elapsed       int
	}
	var candidates []candidate
	for rows.Next() {
		var id uuid.UUID
		var startedAt time.Time
		var logCount int
		if err := rows.Scan(&id, &startedAt, &logCount); err != nil {
			return 0, fmt.Errorf("failed to scan assignment: %w", err)
		}
		candidates = append(candidates, candidate{id, logCount, daysElapsed(startedAt, today)})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	finalized := 0
	for _, c := range candidates {
		status := cycle.Evaluate(c.completedDays, c.elapsed, cycle.Cap, cycle.SuccessThreshold)
		if status == cycle.StatusActive {
			continue
		}
		if err := s.finalize(ctx, c.id, status); err != nil {
			return finalized, err
		}
		finalized++
	}
	return finalized, nil
}

func (s *ChallengeService) ownedAssignment(ctx context.Context, userID, assignmentID uuid.UUID) (*challenge.Assignment, error) {
	query := `
	SELECT id, user_id, challenge_id, status, started_at, completed_at
	FROM user_challenges
	WHERE id = $1 AND user_id = $2
	`
	a := &challenge.Assignment{}
	err := s.db.QueryRow(ctx, query, assignmentID, userID).Scan(
		&a.ID, &a.UserID, &a.ChallengeID, &a.Status, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("assignment %s", assignmentID)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (s *ChallengeService) countLogs(ctx context.Context, assignmentID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM challenge_logs WHERE assignment_id = $1`, assignmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return count, nil
}

func (s *ChallengeService) logNotes(ctx context.Context, assignmentID uuid.UUID) ([]challenge.NoteEntry, error) {
	query := `
	SELECT log_date, note FROM challenge_logs
	WHERE assignment_id = $1
	ORDER BY log_date
	`
	rows, err := s.db.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}
	defer rows.Close()

	notes := []challenge.NoteEntry{}
	for rows.Next() {
		var d time.Time
		var note string
		if err := rows.Scan(&d, &note); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		notes = append(notes, challenge.NoteEntry{Date: d.Format("2006-01-02"), Note: note})
	}
	return notes, rows.Err()
}

// finalize moves an assignment out of active. Status is monotonic: the
// WHERE clause refuses to touch rows that already reached a terminal state.
func (s *ChallengeService) finalize(ctx context.Context, assignmentID uuid.UUID, status cycle.Status) error {
	query := `
	UPDATE user_challenges
	SET status = $2, completed_at = NOW()
	WHERE id = $1 AND status = 'active'
	`
	if _, err := s.db.Exec(ctx, query, assignmentID, status); err != nil {
		return fmt.Errorf("failed to finalize assignment: %w", err)
	}
	return nil
}

// daysElapsed counts calendar days since the start date, start day included.
func daysElapsed(startedAt, today time.Time) int {
	start := dateOnly(startedAt)
	now := dateOnly(today)
	return int(now.Sub(start).Hours()/24) + 1
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
