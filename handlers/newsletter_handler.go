package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cavemindAPI/services"
)

type NewsletterHandler struct {
	newsletterService *services.NewsletterService
}

func NewNewsletterHandler(newsletterService *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
	}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondWithError(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	already, err := h.newsletterService.Subscribe(ctx, email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if already {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Already subscribed"})
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed"})
}
