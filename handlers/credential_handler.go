package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"finquestAPI/internal/credential"
	"finquestAPI/middleware"
	"finquestAPI/repository"
	"finquestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CredentialHandler struct {
	credentials *services.CredentialService
	repair      *services.RepairService
	users       repository.UserDirectory
}

func NewCredentialHandler(credentials *services.CredentialService, repair *services.RepairService, users repository.UserDirectory) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, repair: repair, users: users}
}

// GET /verify/{number} - public, unauthenticated credential check
func (h *CredentialHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	number := mux.Vars(r)["number"]
	if !credential.ValidNumber(number) {
		// malformed numbers can't exist, same public answer as a miss
		respondWithJSON(w, http.StatusOK, credential.VerificationResult{Verified: false, Reason: "NOT_FOUND"})
		return
	}

	result, err := h.credentials.Verify(ctx, number)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Verification unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GET /api/v1/credentials - all credentials for the caller
func (h *CredentialHandler) GetUserCredentials(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	creds, err := h.credentials.ListByUser(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, creds)
}

// GET /api/v1/credentials/goal/{goalID}
func (h *CredentialHandler) GetByGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["goalID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	cred, err := h.credentials.GetByUserAndGoal(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Credential not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, cred)
}

// GET /api/v1/credentials/phase/{phase}
func (h *CredentialHandler) GetPhaseCertificate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	phase, err := strconv.Atoi(mux.Vars(r)["phase"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid phase number")
		return
	}

	cert, err := h.credentials.GetPhaseCertificate(ctx, userID, phase)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Phase certificate not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, cert)
}

// POST /api/v1/credentials/{number}/share - audit an outbound share
func (h *CredentialHandler) RecordShare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.resolveUser(ctx, w); !ok {
		return
	}

	var req struct {
		Channel string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	number := mux.Vars(r)["number"]
	if err := h.credentials.RecordShare(ctx, number, req.Channel); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Credential not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Share recorded"})
}

// POST /api/v1/credentials/repair - re-issue credentials missing after a
// partial failure; idempotent
func (h *CredentialHandler) Repair(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(ctx, w)
	if !ok {
		return
	}

	created, err := h.repair.RepairMissingCredentials(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"credentials_created": created})
}

// POST /admin/credentials/{number}/revoke - operator action, basic auth
func (h *CredentialHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	number := mux.Vars(r)["number"]
	if err := h.credentials.Revoke(ctx, number, req.Reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Credential not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Credential revoked"})
}

func (h *CredentialHandler) resolveUser(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
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
