package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Two invariants are enforced here rather
// than in application code: at most one log per assignment per day, and at
// most one active assignment per user (partial unique index), so racing
// requests lose at the storage layer instead of creating duplicates.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		clerk_id TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		id UUID PRIMARY KEY,
		user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		nudge_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		microchallenge_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		notif_channel TEXT NOT NULL DEFAULT 'push',
		whatsapp_number TEXT NOT NULL DEFAULT '',
		whatsapp_verified BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS challenge_definitions (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		intro TEXT[] NOT NULL DEFAULT '{}',
		instructions TEXT[] NOT NULL DEFAULT '{}',
		why TEXT NOT NULL DEFAULT '',
		tips TEXT[] NOT NULL DEFAULT '{}',
		closing TEXT NOT NULL DEFAULT '',
		week_number INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_challenges (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		challenge_id UUID NOT NULL REFERENCES challenge_definitions(id),
		status TEXT NOT NULL DEFAULT 'active',
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS user_challenges_one_active
		ON user_challenges (user_id) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS challenge_logs (
		id UUID PRIMARY KEY,
		assignment_id UUID NOT NULL REFERENCES user_challenges(id) ON DELETE CASCADE,
		challenge_id UUID NOT NULL,
		user_id UUID NOT NULL,
		log_date DATE NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (assignment_id, log_date)
	)`,
	`CREATE TABLE IF NOT EXISTS spots (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		spot_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS webpush_subscriptions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		endpoint TEXT UNIQUE NOT NULL,
		p256dh TEXT NOT NULL,
		auth TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS device_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT UNIQUE NOT NULL,
		platform TEXT NOT NULL DEFAULT 'android',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS nudges (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		paragraphs TEXT[] NOT NULL DEFAULT '{}',
		quote TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id UUID PRIMARY KEY,
		slug TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		save_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS saved_articles (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, article_id)
	)`,
	`CREATE TABLE IF NOT EXISTS worksheets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'active',
		struggle TEXT NOT NULL DEFAULT '',
		identity TEXT NOT NULL DEFAULT '',
		knowledge TEXT NOT NULL DEFAULT '',
		environment JSONB NOT NULL DEFAULT '{}',
		tiny_action TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tracker_entries (
		id UUID PRIMARY KEY,
		worksheet_id UUID NOT NULL REFERENCES worksheets(id) ON DELETE CASCADE,
		entry_date DATE NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (worksheet_id, entry_date)
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_reflections (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		week_start DATE NOT NULL,
		week_end DATE NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS newsletter_subscribers (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema migration failed: %w", err)
		}
	}
	return nil
}
