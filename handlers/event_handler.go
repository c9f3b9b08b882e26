package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finquestAPI/internal/event"
	"finquestAPI/middleware"
	"finquestAPI/repository"
	"finquestAPI/services"
)

type EventHandler struct {
	engine *services.GoalEngine
	users  repository.UserDirectory
}

func NewEventHandler(engine *services.GoalEngine, users repository.UserDirectory) *EventHandler {
	return &EventHandler{engine: engine, users: users}
}

type recordEventRequest struct {
	EventType event.EventType `json:"event_type"`
	Metadata  map[string]any  `json:"metadata"`
}

type recordEventResponse struct {
	CompletedGoalIDs []int `json:"completed_goal_ids"`
}

// POST /api/v1/events - record a host-app event and re-evaluate goals
func (h *EventHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req recordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := h.users.GetUserIDByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	completed, err := h.engine.ProcessEvent(ctx, userID, req.EventType, req.Metadata)
	if err != nil {
		if errors.Is(err, services.ErrUnknownEventType) {
			respondWithError(w, http.StatusBadRequest, "Unknown event type")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, recordEventResponse{CompletedGoalIDs: completed})
}
