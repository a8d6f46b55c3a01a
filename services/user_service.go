package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// CreateUser inserts a user row plus default preferences. Called from the
// identity provider webhook on user.created.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:          uuid.New(),
		ClerkID:     req.ClerkID,
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, name, phone_number, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (clerk_id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name
	RETURNING id, clerk_id, email, name, phone_number, created_at
	`
	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Name, u.PhoneNumber, u.CreatedAt,
	).Scan(&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.PhoneNumber, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	prefsQuery := `
	INSERT INTO user_preferences (id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, prefsQuery, uuid.New(), u.ID); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, name, phone_number, created_at
	FROM users
	WHERE clerk_id = $1
	`
	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.PhoneNumber, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UserIDByClerkID resolves the internal id for an authenticated request.
func (s *UserService) UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}

// GetUserByPhone matches an inbound WhatsApp sender to an account.
func (s *UserService) GetUserByPhone(ctx context.Context, phone string) (*user.User, error) {
	query := `
	SELECT u.id, u.clerk_id, u.email, u.name, u.phone_number, u.created_at
	FROM users u
	LEFT JOIN user_preferences p ON p.user_id = u.id
	WHERE u.phone_number = $1 OR p.whatsapp_number = $1
	LIMIT 1
	`
	u := &user.User{}
	err := s.db.QueryRow(ctx, query, phone).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.PhoneNumber, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("no user with phone %s", phone)
		}
		return nil, fmt.Errorf("failed to look up user by phone: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET name = COALESCE($2, name), phone_number = COALESCE($3, phone_number)
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, name, phone_number, created_at
	`
	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID, req.Name, req.PhoneNumber).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.PhoneNumber, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("user %s", clerkID)
	}
	return nil
}

func (s *UserService) GetPreferences(ctx context.Context, clerkID string) (*user.Preferences, error) {
	userID, err := s.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, nudge_enabled, microchallenge_enabled, notif_channel, whatsapp_number, whatsapp_verified
	FROM user_preferences
	WHERE user_id = $1
	`
	p := &user.Preferences{}
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.NudgeEnabled, &p.MicrochallengeEnabled,
		&p.NotifChannel, &p.WhatsappNumber, &p.WhatsappVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("preferences for user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, clerkID string, req *user.UpdatePreferencesRequest) (*user.Preferences, error) {
	userID, err := s.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE user_preferences
	SET nudge_enabled = COALESCE($2, nudge_enabled),
	    microchallenge_enabled = COALESCE($3, microchallenge_enabled),
	    notif_channel = COALESCE($4, notif_channel),
	    whatsapp_number = COALESCE($5, whatsapp_number),
	    whatsapp_verified = COALESCE($6, whatsapp_verified)
	WHERE user_id = $1
	RETURNING id, user_id, nudge_enabled, microchallenge_enabled, notif_channel, whatsapp_number, whatsapp_verified
	`
	p := &user.Preferences{}
	err = s.db.QueryRow(ctx, query, userID,
		req.NudgeEnabled, req.MicrochallengeEnabled, req.NotifChannel,
		req.WhatsappNumber, req.WhatsappVerified,
	).Scan(
		&p.ID, &p.UserID, &p.NudgeEnabled, &p.MicrochallengeEnabled,
		&p.NotifChannel, &p.WhatsappNumber, &p.WhatsappVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("preferences for user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return p, nil
}
