package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"finquestAPI/internal/credential"
	"finquestAPI/repository/memory"
	"finquestAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifyFixture(t *testing.T) (*mux.Router, *services.CredentialService) {
	t.Helper()

	store := memory.NewCredentialStore()
	credentials, err := services.NewCredentialService(store, services.CredentialConfig{
		SigningSecret: []byte("test-signing-secret"),
		NumberPrefix:  "FQ",
		IssuerName:    "FinQuest",
		IssuerURL:     "https://finquest.app/verify",
	})
	require.NoError(t, err)

	users := memory.NewUserDirectory()
	repair := services.NewRepairService(memory.NewBadgeLedger(), credentials, users)
	handler := NewCredentialHandler(credentials, repair, users)

	router := mux.NewRouter()
	router.HandleFunc("/verify/{number}", handler.Verify).Methods(http.MethodGet)
	return router, credentials
}

func TestVerify_ActiveCredential(t *testing.T) {
	router, credentials := newVerifyFixture(t)
	goalID := 7

	cred, err := credentials.Issue(context.Background(), services.IssueRequest{
		UserID:               uuid.New(),
		GoalID:               &goalID,
		BadgeName:            "Receipt Rookie",
		GoalTitle:            "Receipt Rookie",
		RecipientDisplayName: "Jamie Lee",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/verify/"+cred.CredentialNumber, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result credential.VerificationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Verified)
	require.NotNil(t, result.Credential)
	assert.Equal(t, cred.CredentialNumber, result.Credential.CredentialNumber)

	// the signature must never leak through the public endpoint
	assert.NotContains(t, rr.Body.String(), cred.Signature)
}

func TestVerify_UnknownNumber(t *testing.T) {
	router, _ := newVerifyFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/verify/FQ-2026-ZZZZZZ", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result credential.VerificationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Verified)
	assert.Equal(t, "NOT_FOUND", result.Reason)
}

func TestVerify_MalformedNumber(t *testing.T) {
	router, _ := newVerifyFixture(t)

	// malformed input gets the same public answer as a miss
	req := httptest.NewRequest(http.MethodGet, "/verify/bogus", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result credential.VerificationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Verified)
	assert.Equal(t, "NOT_FOUND", result.Reason)
}

func TestVerify_RevokedCredential(t *testing.T) {
	router, credentials := newVerifyFixture(t)
	goalID := 7

	cred, err := credentials.Issue(context.Background(), services.IssueRequest{
		UserID:               uuid.New(),
		GoalID:               &goalID,
		BadgeName:            "Receipt Rookie",
		GoalTitle:            "Receipt Rookie",
		RecipientDisplayName: "Jamie Lee",
	})
	require.NoError(t, err)
	require.NoError(t, credentials.Revoke(context.Background(), cred.CredentialNumber, "issued in error"))

	req := httptest.NewRequest(http.MethodGet, "/verify/"+cred.CredentialNumber, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result credential.VerificationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Verified)
	assert.Equal(t, "REVOKED", result.Reason)
	assert.Equal(t, "issued in error", result.RevokedReason)
}
