package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cavemindAPI/internal/apperr"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", apperr.NotFoundf("challenge"), http.StatusNotFound},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized},
		{"already exists", fmt.Errorf("active challenge: %w", apperr.ErrAlreadyExists), http.StatusBadRequest},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, tt.err)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

// Internal failures must not leak error detail to the client.
func TestRespondServiceErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	respondServiceError(rr, errors.New("pq: connection refused on 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusCreated, map[string]int{"sent": 3})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"sent": 3}`, rr.Body.String())
}
