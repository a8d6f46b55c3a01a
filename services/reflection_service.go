package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/types/worksheet"
)

// ReflectionService composes a weekly coaching reflection from the week's
// tracker entries, challenge logs and spots. Without an OpenAI client it
// refuses generation but still serves stored reflections.
type ReflectionService struct {
	db         *pgxpool.Pool
	worksheets *WorksheetService
	ai         *openai.Client
}

func NewReflectionService(db *pgxpool.Pool, worksheets *WorksheetService, ai *openai.Client) *ReflectionService {
	return &ReflectionService{db: db, worksheets: worksheets, ai: ai}
}

// Generate builds the week's reflection and stores it.
func (s *ReflectionService) Generate(ctx context.Context, userID uuid.UUID, now time.Time) (*worksheet.WeeklyReflection, error) {
	if s.ai == nil {
		return nil, fmt.Errorf("reflection generation is not configured")
	}

	active, err := s.worksheets.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekStart, weekEnd := weekBounds(now)
	entries, err := s.worksheets.WeekEntries(ctx, active.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	prompt, err := s.buildPrompt(ctx, userID, active, entries, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	resp, err := s.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openai.GPT4,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		MaxTokens: 300,
	})
	if err != nil {
		return nil, fmt.Errorf("reflection generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("reflection generation returned no content")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	r := &worksheet.WeeklyReflection{
		ID:        uuid.New(),
		UserID:    userID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	query := `
	INSERT INTO weekly_reflections (id, user_id, week_start, week_end, content, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, r.ID, r.UserID, r.WeekStart, r.WeekEnd, r.Content, r.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to store reflection: %w", err)
	}
	return r, nil
}

func (s *ReflectionService) Latest(ctx context.Context, userID uuid.UUID) (*worksheet.WeeklyReflection, error) {
	query := `
	SELECT id, user_id, week_start, week_end, content, created_at
	FROM weekly_reflections
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT 1
	`
	r := &worksheet.WeeklyReflection{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&r.ID, &r.UserID, &r.WeekStart, &r.WeekEnd, &r.Content, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("no reflection found")
		}
		return nil, fmt.Errorf("failed to get reflection: %w", err)
	}
	return r, nil
}

func (s *ReflectionService) buildPrompt(ctx context.Context, userID uuid.UUID, w *worksheet.Worksheet, entries []*worksheet.TrackerEntry, from, to time.Time) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a behavioral coach who understands evolutionary psychology. "+
		"Based on the following logs, write a 4-6 sentence weekly reflection that validates "+
		"the user's effort, connects their patterns to caveman wiring, and encourages consistency.\n\n")
	fmt.Fprintf(&b, "Identity: %s\nTiny Action: %s\n\nTracker Completions:\n", w.Identity, w.TinyAction)
	for _, e := range entries {
		mark := "missed"
		if e.Completed {
			mark = "done"
		}
		fmt.Fprintf(&b, "- %s: %s %s\n", e.EntryDate.Format("2006-01-02"), mark, e.Note)
	}

	logsQuery := `
	SELECT cd.title, cl.note
	FROM challenge_logs cl
	JOIN challenge_definitions cd ON cd.id = cl.challenge_id
	WHERE cl.user_id = $1 AND cl.log_date BETWEEN $2 AND $3
	ORDER BY cl.log_date
	`
	rows, err := s.db.Query(ctx, logsQuery, userID, dateOnly(from), dateOnly(to))
	if err != nil {
		return "", fmt.Errorf("failed to fetch challenge logs: %w", err)
	}
	defer rows.Close()
	wroteHeader := false
	for rows.Next() {
		var title, note string
		if err := rows.Scan(&title, &note); err != nil {
			return "", fmt.Errorf("failed to scan challenge log: %w", err)
		}
		if !wroteHeader {
			b.WriteString("\nMicrochallenge Logs:\n")
			wroteHeader = true
		}
		if note == "" {
			note = "no note"
		}
		fmt.Fprintf(&b, "- Challenge: %s, Note: %s\n", title, note)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	spotsQuery := `
	SELECT description FROM spots
	WHERE user_id = $1 AND spot_date BETWEEN $2 AND $3
	ORDER BY spot_date
	`
	spotRows, err := s.db.Query(ctx, spotsQuery, userID, dateOnly(from), dateOnly(to))
	if err != nil {
		return "", fmt.Errorf("failed to fetch spots: %w", err)
	}
	defer spotRows.Close()
	wroteHeader = false
	for spotRows.Next() {
		var description string
		if err := spotRows.Scan(&description); err != nil {
			return "", fmt.Errorf("failed to scan spot: %w", err)
		}
		if !wroteHeader {
			b.WriteString("\nCaveman Spots:\n")
			wroteHeader = true
		}
		fmt.Fprintf(&b, "- %s\n", description)
	}
	if err := spotRows.Err(); err != nil {
		return "", err
	}

	b.WriteString("\nReflection:")
	return b.String(), nil
}

// weekBounds returns Monday..Sunday of the week containing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	d := dateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}
