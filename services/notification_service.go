package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/push"
	"cavemindAPI/internal/types/notification"
)

// DeviceSender mirrors internal/notification.DeviceSender so the service
// only depends on the one method it calls.
type DeviceSender interface {
	SendDevice(ctx context.Context, token *notification.DeviceToken, payload *notification.Payload) bool
}

// NotificationService owns push subscription/device registration and the
// per-channel delivery loops. Providers are injected after construction;
// until then both channels are no-ops.
type NotificationService struct {
	db     *pgxpool.Pool
	push   push.Sender
	device DeviceSender
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushSender(sender push.Sender)    { s.push = sender }
func (s *NotificationService) SetDeviceSender(sender DeviceSender) { s.device = sender }

// RegisterSubscription stores a browser push endpoint. Registering the same
// endpoint twice is a no-op.
func (s *NotificationService) RegisterSubscription(ctx context.Context, userID uuid.UUID, req *notification.RegisterSubscriptionRequest) error {
	query := `
	INSERT INTO webpush_subscriptions (id, user_id, endpoint, p256dh, auth)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (endpoint) DO NOTHING
	`
	_, err := s.db.Exec(ctx, query, uuid.New(), userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return fmt.Errorf("failed to register subscription: %w", err)
	}
	return nil
}

// RegisterDevice stores an FCM token, reassigning it if another account
// registered it earlier (device handed to a different user).
func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	query := `
	INSERT INTO device_tokens (id, user_id, token, platform)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
	`
	_, err := s.db.Exec(ctx, query, uuid.New(), userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) ListSubscriptions(ctx context.Context) ([]*notification.WebPushSubscription, error) {
	return s.querySubscriptions(ctx, `
	SELECT id, user_id, endpoint, p256dh, auth, created_at
	FROM webpush_subscriptions
	`)
}

func (s *NotificationService) ListSubscriptionsForUser(ctx context.Context, userID uuid.UUID) ([]*notification.WebPushSubscription, error) {
	return s.querySubscriptions(ctx, `
	SELECT id, user_id, endpoint, p256dh, auth, created_at
	FROM webpush_subscriptions
	WHERE user_id = $1
	`, userID)
}

// SubscribedUserIDs returns the distinct users with at least one push
// subscription, for per-user reminder fan-out.
func (s *NotificationService) SubscribedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT user_id FROM webpush_subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *NotificationService) ListDeviceTokens(ctx context.Context) ([]*notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT id, user_id, token, platform, created_at FROM device_tokens`)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.DeviceToken
	for rows.Next() {
		t := &notification.DeviceToken{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// PushToSubscriptions attempts delivery to every subscription independently.
// It returns the success count and the endpoints the channel reported as
// permanently invalid; the caller deletes those.
func (s *NotificationService) PushToSubscriptions(ctx context.Context, subs []*notification.WebPushSubscription, payload *notification.Payload) (int, []string) {
	sender := s.push
	if sender == nil {
		sender = push.NoopSender{}
	}

	successes := 0
	var stale []string
	for _, sub := range subs {
		result := sender.Send(ctx, sub, payload)
		switch {
		case result.OK():
			successes++
		case result.Class.Stale():
			stale = append(stale, sub.Endpoint)
		}
	}
	return successes, stale
}

// PushToDevices attempts FCM delivery to every token independently.
func (s *NotificationService) PushToDevices(ctx context.Context, tokens []*notification.DeviceToken, payload *notification.Payload) int {
	sender := s.device
	if sender == nil {
		return 0
	}

	successes := 0
	for _, t := range tokens {
		if sender.SendDevice(ctx, t, payload) {
			successes++
		}
	}
	return successes
}

// DeleteSubscriptions removes endpoints reported gone or not found.
func (s *NotificationService) DeleteSubscriptions(ctx context.Context, endpoints []string) int {
	deleted := 0
	for _, endpoint := range endpoints {
		tag, err := s.db.Exec(ctx, `DELETE FROM webpush_subscriptions WHERE endpoint = $1`, endpoint)
		if err != nil {
			log.Printf("notifications: failed to delete stale subscription %s: %v", endpoint, err)
			continue
		}
		deleted += int(tag.RowsAffected())
	}
	return deleted
}

// PushToUser sends one payload to all of a user's subscriptions and devices,
// pruning stale endpoints afterwards.
func (s *NotificationService) PushToUser(ctx context.Context, userID uuid.UUID, payload *notification.Payload) (int, error) {
	subs, err := s.ListSubscriptionsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	successes, stale := s.PushToSubscriptions(ctx, subs, payload)
	if len(stale) > 0 {
		s.DeleteSubscriptions(ctx, stale)
	}
	return successes, nil
}

func (s *NotificationService) querySubscriptions(ctx context.Context, query string, args ...any) ([]*notification.WebPushSubscription, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*notification.WebPushSubscription
	for rows.Next() {
		sub := &notification.WebPushSubscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
