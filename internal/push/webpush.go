// Package push implements the web push delivery channel. Delivery results
// carry a status classification so the dispatcher can decide which
// subscriptions to drop; only gone/not-found endpoints are stale, malformed
// payloads and VAPID auth failures are logged and kept.
package push

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"cavemindAPI/internal/types/notification"
)

type StatusClass string

const (
	ClassOK           StatusClass = "ok"
	ClassGone         StatusClass = "gone"
	ClassNotFound     StatusClass = "not_found"
	ClassMalformed    StatusClass = "malformed"
	ClassUnauthorized StatusClass = "unauthorized"
	ClassOther        StatusClass = "other"
)

// Stale reports whether the endpoint is permanently invalid and its
// subscription row should be deleted.
func (c StatusClass) Stale() bool {
	return c == ClassGone || c == ClassNotFound
}

type Result struct {
	Class StatusClass
	Err   error
}

func (r Result) OK() bool { return r.Class == ClassOK }

// Classify maps a push service HTTP status to a StatusClass.
func Classify(statusCode int) StatusClass {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return ClassOK
	case statusCode == http.StatusGone:
		return ClassGone
	case statusCode == http.StatusNotFound:
		return ClassNotFound
	case statusCode == http.StatusBadRequest:
		return ClassMalformed
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ClassUnauthorized
	default:
		return ClassOther
	}
}

// Sender delivers one payload to one subscription. Implementations never
// return a batch-fatal error; a failed delivery is a non-OK Result.
type Sender interface {
	Send(ctx context.Context, sub *notification.WebPushSubscription, payload *notification.Payload) Result
}

// WebPushSender sends VAPID-signed web push messages.
type WebPushSender struct {
	options webpush.Options
}

func NewWebPushSender(vapidPublicKey, vapidPrivateKey, subscriberEmail string) *WebPushSender {
	return &WebPushSender{
		options: webpush.Options{
			Subscriber:      "mailto:" + subscriberEmail,
			VAPIDPublicKey:  vapidPublicKey,
			VAPIDPrivateKey: vapidPrivateKey,
			TTL:             3600,
		},
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub *notification.WebPushSubscription, payload *notification.Payload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Class: ClassMalformed, Err: err}
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	opts := s.options
	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &opts)
	if err != nil {
		log.Printf("webpush: send to %s failed: %v", sub.Endpoint, err)
		return Result{Class: ClassOther, Err: err}
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	class := Classify(resp.StatusCode)
	if class != ClassOK {
		log.Printf("webpush: %s responded %d (%s)", sub.Endpoint, resp.StatusCode, class)
	}
	return Result{Class: class}
}

// NoopSender stands in when VAPID keys are not configured. It never raises;
// every delivery is counted as a non-success.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, sub *notification.WebPushSubscription, payload *notification.Payload) Result {
	log.Printf("webpush: not configured, skipping %s", sub.Endpoint)
	return Result{Class: ClassOther}
}
