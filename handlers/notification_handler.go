package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cavemindAPI/internal/types/notification"
	"cavemindAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	userService         *services.UserService
}

func NewNotificationHandler(notificationService *services.NotificationService, userService *services.UserService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		userService:         userService,
	}
}

func (h *NotificationHandler) RegisterWebPush(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req notification.RegisterSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respondWithError(w, http.StatusBadRequest, "Endpoint and keys are required")
		return
	}

	if err := h.notificationService.RegisterSubscription(ctx, userID, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Subscription registered"})
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, userID, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Device registered"})
}

// TestPush sends a canned notification to the caller's own subscriptions.
func (h *NotificationHandler) TestPush(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	payload := &notification.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working.",
	}
	sent, err := h.notificationService.PushToUser(ctx, userID, payload)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
