package handlers

import (
	"context"
	"net/http"
	"time"

	"cavemindAPI/services"
)

// NudgeHandler exposes the nudge catalog plus manual triggers for the jobs
// the scheduler normally runs.
type NudgeHandler struct {
	nudgeService    *services.NudgeService
	reminderService *services.ReminderService
}

func NewNudgeHandler(nudgeService *services.NudgeService, reminderService *services.ReminderService) *NudgeHandler {
	return &NudgeHandler{
		nudgeService:    nudgeService,
		reminderService: reminderService,
	}
}

func (h *NudgeHandler) Random(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.nudgeService.RandomActive(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

// SendDaily dispatches the daily nudge immediately instead of waiting for
// the scheduled run. Fan-out can outlive the usual handler timeout.
func (h *NudgeHandler) SendDaily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	report, err := h.nudgeService.DispatchDaily(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *NudgeHandler) SendChallengeReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	sent, err := h.reminderService.SendChallengeReminders(ctx, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

func (h *NudgeHandler) SendSpotReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	sent, err := h.reminderService.SendSpotReminders(ctx, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
