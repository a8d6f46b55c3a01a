package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cavemindAPI/services"
)

// WhatsAppHandler receives inbound WhatsApp messages relayed by Twilio as
// form-encoded webhooks and answers with TwiML.
type WhatsAppHandler struct {
	userService *services.UserService
	spotService *services.SpotService
}

func NewWhatsAppHandler(userService *services.UserService, spotService *services.SpotService) *WhatsAppHandler {
	return &WhatsAppHandler{
		userService: userService,
		spotService: spotService,
	}
}

// ParseSpotMessage extracts the spot description from an inbound message.
// Only messages starting with a "spot:" prefix (case-insensitive) are spot
// submissions.
func ParseSpotMessage(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) < 5 || !strings.EqualFold(trimmed[:5], "spot:") {
		return "", false
	}
	description := strings.TrimSpace(trimmed[5:])
	if description == "" {
		return "", false
	}
	return description, true
}

func (h *WhatsAppHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form payload", http.StatusBadRequest)
		return
	}

	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := r.PostFormValue("Body")
	if from == "" {
		http.Error(w, "Missing sender", http.StatusBadRequest)
		return
	}

	description, ok := ParseSpotMessage(body)
	if !ok {
		respondTwiML(w, "Reply with \"spot: <what you noticed>\" to log a caveman spot.")
		return
	}

	u, err := h.userService.GetUserByPhone(ctx, from)
	if err != nil {
		log.Printf("whatsapp: no user for inbound number: %v", err)
		respondTwiML(w, "We couldn't match your number to an account. Add it in your profile settings first.")
		return
	}

	if _, err := h.spotService.Create(ctx, u.ID, description, time.Now()); err != nil {
		log.Printf("whatsapp: failed to save spot: %v", err)
		respondTwiML(w, "Something went wrong saving your spot. Try again in a bit.")
		return
	}

	respondTwiML(w, "Spot logged. Nice catch.")
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<Response><Message>%s</Message></Response>", message)
}
