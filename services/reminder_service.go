package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/types/notification"
)

// ReminderService sends the per-user challenge and spot reminders. Each
// subscribed user gets one of two payload variants depending on whether they
// already checked in today.
type ReminderService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewReminderService(db *pgxpool.Pool, notifications *NotificationService) *ReminderService {
	return &ReminderService{db: db, notifications: notifications}
}

// SendSpotReminders pushes the evening spot check-in to every subscribed
// user. Returns the number of successful deliveries.
func (s *ReminderService) SendSpotReminders(ctx context.Context, today time.Time) (int, error) {
	userIDs, err := s.notifications.SubscribedUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, userID := range userIDs {
		spotted, err := s.hasSpottedToday(ctx, userID, today)
		if err != nil {
			return sent, err
		}

		payload := &notification.Payload{
			Title: "Caveman Check-in",
			Body:  "Did you notice your instincts in action today?",
		}
		if spotted {
			payload = &notification.Payload{
				Title: "Awareness Activated",
				Body:  "Nice job spotting your caveman today!",
			}
		}

		n, err := s.notifications.PushToUser(ctx, userID, payload)
		if err != nil {
			return sent, err
		}
		sent += n
	}
	return sent, nil
}

// SendChallengeReminders pushes the midday microchallenge reminder to every
// subscribed user with the preference enabled.
func (s *ReminderService) SendChallengeReminders(ctx context.Context, today time.Time) (int, error) {
	userIDs, err := s.notifications.SubscribedUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, userID := range userIDs {
		enabled, err := s.challengeRemindersEnabled(ctx, userID)
		if err != nil {
			return sent, err
		}
		if !enabled {
			continue
		}

		logged, err := s.hasLoggedChallengeToday(ctx, userID, today)
		if err != nil {
			return sent, err
		}

		payload := &notification.Payload{
			Title: "Today's Micro Win",
			Body:  "Your daily challenge is still open. Quick check-in?",
		}
		if logged {
			payload = &notification.Payload{
				Title: "Consistency Hit",
				Body:  "You showed up again. That's what builds momentum.",
			}
		}

		n, err := s.notifications.PushToUser(ctx, userID, payload)
		if err != nil {
			return sent, err
		}
		sent += n
	}
	return sent, nil
}

func (s *ReminderService) hasSpottedToday(ctx context.Context, userID uuid.UUID, today time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM spots WHERE user_id = $1 AND spot_date = $2)`,
		userID, dateOnly(today),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check spots: %w", err)
	}
	return exists, nil
}

func (s *ReminderService) hasLoggedChallengeToday(ctx context.Context, userID uuid.UUID, today time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenge_logs WHERE user_id = $1 AND log_date = $2)`,
		userID, dateOnly(today),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check challenge logs: %w", err)
	}
	return exists, nil
}

func (s *ReminderService) challengeRemindersEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	var enabled bool
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE((SELECT microchallenge_enabled FROM user_preferences WHERE user_id = $1), TRUE)`,
		userID,
	).Scan(&enabled)
	if err != nil {
		return false, fmt.Errorf("failed to read preferences: %w", err)
	}
	return enabled, nil
}
