package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/analytics"
	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/types/article"
)

type ArticleService struct {
	db    *pgxpool.Pool
	track *analytics.Tracker
}

func NewArticleService(db *pgxpool.Pool, track *analytics.Tracker) *ArticleService {
	return &ArticleService{db: db, track: track}
}

// Save bookmarks an article by slug. Saving twice is reported as already
// saved, not an error, and the global counter is only bumped once.
func (s *ArticleService) Save(ctx context.Context, userID uuid.UUID, slug string) (*article.SaveResult, error) {
	var articleID uuid.UUID
	var saveCount int
	err := s.db.QueryRow(ctx, `SELECT id, save_count FROM articles WHERE slug = $1`, slug).Scan(&articleID, &saveCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("article %s", slug)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	insert := `
	INSERT INTO saved_articles (id, user_id, article_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, article_id) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, insert, uuid.New(), userID, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &article.SaveResult{AlreadySaved: true, SaveCount: saveCount}, nil
	}

	err = s.db.QueryRow(ctx,
		`UPDATE articles SET save_count = save_count + 1 WHERE id = $1 RETURNING save_count`,
		articleID,
	).Scan(&saveCount)
	if err != nil {
		return nil, fmt.Errorf("failed to bump save count: %w", err)
	}

	s.track.Track(userID.String(), "article_saved", map[string]any{"slug": slug})
	return &article.SaveResult{SaveCount: saveCount}, nil
}

func (s *ArticleService) ListSaved(ctx context.Context, userID uuid.UUID) ([]*article.Article, error) {
	query := `
	SELECT a.id, a.slug, a.title, a.url, a.save_count, a.created_at
	FROM articles a
	JOIN saved_articles sa ON sa.article_id = a.id
	WHERE sa.user_id = $1
	ORDER BY sa.created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved articles: %w", err)
	}
	defer rows.Close()

	articles := []*article.Article{}
	for rows.Next() {
		a := &article.Article{}
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.URL, &a.SaveCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *ArticleService) Unsave(ctx context.Context, userID uuid.UUID, slug string) error {
	query := `
	DELETE FROM saved_articles sa
	USING articles a
	WHERE sa.article_id = a.id AND sa.user_id = $1 AND a.slug = $2
	`
	tag, err := s.db.Exec(ctx, query, userID, slug)
	if err != nil {
		return fmt.Errorf("failed to unsave article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("saved article %s", slug)
	}
	return nil
}
