package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finquestAPI/middleware"
	"finquestAPI/repository"
	"finquestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CelebrationHandler struct {
	celebrations *services.CelebrationService
	users        repository.UserDirectory
}

func NewCelebrationHandler(celebrations *services.CelebrationService, users repository.UserDirectory) *CelebrationHandler {
	return &CelebrationHandler{celebrations: celebrations, users: users}
}

// GET /api/v1/celebrations - unseen celebrations for the caller
func (h *CelebrationHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userID, err := h.users.GetUserIDByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	pending, err := h.celebrations.GetPending(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}

// PUT /api/v1/celebrations/{id}/shown - mark a celebration displayed
func (h *CelebrationHandler) MarkShown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid celebration ID")
		return
	}

	if err := h.celebrations.MarkShown(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Celebration not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Celebration marked as shown"})
}
