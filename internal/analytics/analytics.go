// Package analytics wraps the PostHog event sink. Capture is fire-and-forget
// and never blocks or fails the calling operation; without an API key the
// client degrades to a log-only stub.
package analytics

import (
	"log"

	"github.com/posthog/posthog-go"
)

type Tracker struct {
	client posthog.Client
}

// New returns a Tracker. With an empty apiKey the tracker only logs.
func New(apiKey, host string) *Tracker {
	if apiKey == "" {
		return &Tracker{}
	}
	if host == "" {
		host = "https://app.posthog.com"
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: host})
	if err != nil {
		log.Printf("analytics: init failed, falling back to stub: %v", err)
		return &Tracker{}
	}
	return &Tracker{client: client}
}

// Track captures one event keyed by user id. Errors are logged only.
func (t *Tracker) Track(userID, event string, properties map[string]any) {
	if t == nil || t.client == nil {
		log.Printf("analytics: event skipped: %s props=%v", event, properties)
		return
	}
	if userID == "" {
		userID = "anonymous"
	}
	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      event,
		Properties: props,
	}); err != nil {
		log.Printf("analytics: capture failed for %s: %v", event, err)
	}
}

// Identify updates a user profile in the sink. Errors are logged only.
func (t *Tracker) Identify(userID string, traits map[string]any) {
	if t == nil || t.client == nil {
		log.Printf("analytics: identify skipped: %s", userID)
		return
	}
	props := posthog.NewProperties()
	for k, v := range traits {
		props.Set(k, v)
	}
	if err := t.client.Enqueue(posthog.Identify{
		DistinctId: userID,
		Properties: props,
	}); err != nil {
		log.Printf("analytics: identify failed for %s: %v", userID, err)
	}
}

// Close flushes pending events. Safe on a stub tracker.
func (t *Tracker) Close() {
	if t != nil && t.client != nil {
		t.client.Close()
	}
}
