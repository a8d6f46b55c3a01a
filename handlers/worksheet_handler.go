package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cavemindAPI/internal/types/worksheet"
	"cavemindAPI/services"
)

type WorksheetHandler struct {
	worksheetService  *services.WorksheetService
	reflectionService *services.ReflectionService
	userService       *services.UserService
}

func NewWorksheetHandler(worksheetService *services.WorksheetService, reflectionService *services.ReflectionService, userService *services.UserService) *WorksheetHandler {
	return &WorksheetHandler{
		worksheetService:  worksheetService,
		reflectionService: reflectionService,
		userService:       userService,
	}
}

func (h *WorksheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req worksheet.CreateWorksheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TinyAction == "" {
		respondWithError(w, http.StatusBadRequest, "Tiny action is required")
		return
	}

	created, err := h.worksheetService.Create(ctx, userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *WorksheetHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	active, err := h.worksheetService.GetActive(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, active)
}

func (h *WorksheetHandler) TrackEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	var req worksheet.TrackEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.worksheetService.TrackEntry(ctx, userID, &req, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (h *WorksheetHandler) EditNote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["entryID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var req worksheet.EditNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.worksheetService.EditNote(ctx, userID, entryID, req.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

// GenerateReflection calls out to the language model, so it gets a longer
// deadline than ordinary handlers.
func (h *WorksheetHandler) GenerateReflection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	reflection, err := h.reflectionService.Generate(ctx, userID, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reflection)
}

func (h *WorksheetHandler) LatestReflection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	reflection, err := h.reflectionService.Latest(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reflection)
}
