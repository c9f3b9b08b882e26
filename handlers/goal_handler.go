package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finquestAPI/internal/goal"
	"finquestAPI/middleware"
	"finquestAPI/repository"
	"finquestAPI/services"

	"github.com/google/uuid"
)

type GoalHandler struct {
	progress repository.ProgressStore
	badges   repository.BadgeLedger
	users    repository.UserDirectory
	gate     *services.PhaseGate
}

func NewGoalHandler(progress repository.ProgressStore, badges repository.BadgeLedger, users repository.UserDirectory, gate *services.PhaseGate) *GoalHandler {
	return &GoalHandler{
		progress: progress,
		badges:   badges,
		users:    users,
		gate:     gate,
	}
}

// GET /api/v1/goals - the full catalog grouped by phase
func (h *GoalHandler) GetGoalsByPhase(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, goal.ByPhase())
}

// GET /api/v1/goals/progress - the caller's progress rows
func (h *GoalHandler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	rows, err := h.progress.ListByUser(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}

// GET /api/v1/goals/badges - the caller's earned badges
func (h *GoalHandler) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	earned, err := h.badges.ListByUser(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, earned)
}

// GET /api/v1/goals/phases - derived phase unlock status
func (h *GoalHandler) GetPhaseUnlockStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	status, err := h.gate.UnlockStatus(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

func (h *GoalHandler) resolveUser(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, authed := middleware.GetClerkID(ctx)
	if !authed {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	id, err := h.users.GetUserIDByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return uuid.Nil, false
	}
	return id, true
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
