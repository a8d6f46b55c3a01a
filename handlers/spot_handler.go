package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cavemindAPI/internal/types/spot"
	"cavemindAPI/services"
)

type SpotHandler struct {
	spotService *services.SpotService
	userService *services.UserService
}

func NewSpotHandler(spotService *services.SpotService, userService *services.UserService) *SpotHandler {
	return &SpotHandler{
		spotService: spotService,
		userService: userService,
	}
}

func (h *SpotHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req spot.CreateSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondWithError(w, http.StatusBadRequest, "Description is required")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	created, err := h.spotService.Create(ctx, userID, req.Description, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *SpotHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	spots, err := h.spotService.List(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, spots)
}
