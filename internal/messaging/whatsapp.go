// Package messaging implements the WhatsApp delivery channel over the
// Twilio REST API.
package messaging

import (
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers one text to one phone number. A failed delivery is
// reported as ok=false, never as a batch-fatal error.
type Sender interface {
	SendText(toNumber, body string) bool
}

type WhatsAppSender struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewWhatsAppSender(accountSID, authToken, fromNumber string) *WhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppSender{client: client, fromNumber: fromNumber}
}

func (s *WhatsAppSender) SendText(toNumber, body string) bool {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + s.fromNumber)
	params.SetTo("whatsapp:" + toNumber)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.Printf("whatsapp: failed to send to %s: %v", toNumber, err)
		return false
	}
	return true
}

// NoopSender stands in when Twilio credentials are not configured.
type NoopSender struct{}

func (NoopSender) SendText(toNumber, body string) bool {
	log.Printf("whatsapp: not configured, skipping %s", toNumber)
	return false
}
