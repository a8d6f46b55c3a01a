package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cavemindAPI/internal/types/challenge"
	"cavemindAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	userService      *services.UserService
}

func NewChallengeHandler(challengeService *services.ChallengeService, userService *services.UserService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		userService:      userService,
	}
}

func (h *ChallengeHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	defs, err := h.challengeService.ListAll(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, defs)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	def, err := h.challengeService.GetDefinition(ctx, challengeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}

func (h *ChallengeHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	assignment, err := h.challengeService.Assign(ctx, userID, challengeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assignment)
}

func (h *ChallengeHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	active, err := h.challengeService.GetActive(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, active)
}

func (h *ChallengeHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	assignmentID, err := uuid.Parse(mux.Vars(r)["assignmentID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	if err := h.challengeService.Remove(ctx, userID, assignmentID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge removed"})
}

func (h *ChallengeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	assigned, err := h.challengeService.ListAssigned(ctx, userID, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, assigned)
}

func (h *ChallengeHandler) LogToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req challenge.LogTodayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.challengeService.LogToday(ctx, userID, &req, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// A duplicate check-in is indistinguishable from a first-time success
	// apart from the already_logged flag.
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ChallengeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	assignmentID, err := uuid.Parse(mux.Vars(r)["assignmentID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	progress, err := h.challengeService.GetProgress(ctx, userID, assignmentID, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, progress)
}
