package nudge

import (
	"strings"

	"github.com/google/uuid"
)

// Nudge is a short motivational message broadcast to all subscribers on a
// schedule. Rows are read-only to the dispatcher.
type Nudge struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Paragraphs []string  `json:"paragraphs" db:"paragraphs"`
	Quote      string    `json:"quote" db:"quote"`
	Link       string    `json:"link" db:"link"`
	IsActive   bool      `json:"is_active" db:"is_active"`
}

// PushBody is the short rendering used for push notifications: the first
// paragraph, or the quote when there are no paragraphs.
func (n *Nudge) PushBody() string {
	for _, p := range n.Paragraphs {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return n.Quote
}

// MessageBody is the long rendering used for the messaging channel: title,
// every paragraph and the quote.
func (n *Nudge) MessageBody() string {
	var b strings.Builder
	b.WriteString(n.Title)
	for _, p := range n.Paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(p)
	}
	if n.Quote != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Quote)
	}
	return b.String()
}

// DispatchReport aggregates one dispatch cycle across all channels.
type DispatchReport struct {
	NudgeID          uuid.UUID `json:"nudge_id"`
	PushSuccesses    int       `json:"push_successes"`
	PushTargets      int       `json:"push_targets"`
	DeviceSuccesses  int       `json:"device_successes"`
	DeviceTargets    int       `json:"device_targets"`
	MessageSuccesses int       `json:"message_successes"`
	MessageTargets   int       `json:"message_targets"`
	PushPreview      string    `json:"push_preview"`
	MessagePreview   string    `json:"message_preview"`
	StaleDeleted     int       `json:"stale_subscriptions_deleted"`
}
