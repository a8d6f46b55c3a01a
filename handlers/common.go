package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/middleware"
	"cavemindAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("handlers: failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "user not authenticated")
	case errors.Is(err, apperr.ErrAlreadyExists):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("handlers: internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// resolveUserID maps the authenticated Clerk identity to the internal user id,
// writing the error response itself when the caller cannot be resolved.
func resolveUserID(ctx context.Context, w http.ResponseWriter, users *services.UserService) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	userID, err := users.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		respondServiceError(w, err)
		return uuid.Nil, false
	}
	return userID, true
}
