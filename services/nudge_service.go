package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5/pgxpool"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/internal/messaging"
	"cavemindAPI/internal/types/notification"
	"cavemindAPI/internal/types/nudge"
)

// NudgeService selects behavioral nudges and fans them out across the push
// and messaging channels. Channel failures are counted per target, never
// raised; one bad endpoint cannot abort a dispatch cycle.
type NudgeService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
	messages      messaging.Sender
}

func NewNudgeService(db *pgxpool.Pool, notifications *NotificationService) *NudgeService {
	return &NudgeService{db: db, notifications: notifications, messages: messaging.NoopSender{}}
}

func (s *NudgeService) SetMessageSender(sender messaging.Sender) { s.messages = sender }

// RandomActive picks one nudge uniformly at random among active rows.
func (s *NudgeService) RandomActive(ctx context.Context) (*nudge.Nudge, error) {
	query := `
	SELECT id, title, paragraphs, quote, link, is_active
	FROM nudges
	WHERE is_active = TRUE
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nudges: %w", err)
	}
	defer rows.Close()

	var nudges []*nudge.Nudge
	for rows.Next() {
		n := &nudge.Nudge{}
		if err := rows.Scan(&n.ID, &n.Title, &n.Paragraphs, &n.Quote, &n.Link, &n.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan nudge: %w", err)
		}
		nudges = append(nudges, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pickRandom(nudges)
}

func pickRandom(nudges []*nudge.Nudge) (*nudge.Nudge, error) {
	if len(nudges) == 0 {
		return nil, apperr.NotFoundf("no active nudges available")
	}
	return nudges[rand.Intn(len(nudges))], nil
}

// DispatchDaily runs one dispatch cycle: one random active nudge rendered
// short for the push channels and long for WhatsApp, delivered to every
// eligible target. Subscriptions reported gone/not-found are deleted after
// the fan-out.
func (s *NudgeService) DispatchDaily(ctx context.Context) (*nudge.DispatchReport, error) {
	n, err := s.RandomActive(ctx)
	if err != nil {
		return nil, err
	}

	payload := &notification.Payload{
		Title: n.Title,
		Body:  n.PushBody(),
		Link:  n.Link,
	}
	longBody := n.MessageBody()

	report := &nudge.DispatchReport{
		NudgeID:        n.ID,
		PushPreview:    payload.Title + ": " + payload.Body,
		MessagePreview: longBody,
	}

	subs, err := s.notifications.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	report.PushTargets = len(subs)
	var stale []string
	report.PushSuccesses, stale = s.notifications.PushToSubscriptions(ctx, subs, payload)
	report.StaleDeleted = s.notifications.DeleteSubscriptions(ctx, stale)

	tokens, err := s.notifications.ListDeviceTokens(ctx)
	if err != nil {
		return nil, err
	}
	report.DeviceTargets = len(tokens)
	report.DeviceSuccesses = s.notifications.PushToDevices(ctx, tokens, payload)

	numbers, err := s.whatsappTargets(ctx)
	if err != nil {
		return nil, err
	}
	report.MessageTargets = len(numbers)
	for _, number := range numbers {
		if s.messages.SendText(number, longBody) {
			report.MessageSuccesses++
		}
	}

	return report, nil
}

// whatsappTargets are users who opted into nudges on the WhatsApp channel
// and have a number on file.
func (s *NudgeService) whatsappTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT p.whatsapp_number
	FROM user_preferences p
	WHERE p.nudge_enabled = TRUE
	  AND p.notif_channel IN ('whatsapp', 'both')
	  AND p.whatsapp_number <> ''
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list whatsapp targets: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan whatsapp number: %w", err)
		}
		numbers = append(numbers, number)
	}
	return numbers, rows.Err()
}
