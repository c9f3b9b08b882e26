package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finquestAPI/middleware"
	"finquestAPI/repository/memory"
	"finquestAPI/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventHandlerFixture(t *testing.T) (*EventHandler, *memory.UserDirectory) {
	t.Helper()

	events := memory.NewEventLog()
	progressStore := memory.NewProgressStore()
	badges := memory.NewBadgeLedger()
	celebrations := memory.NewCelebrationStore()
	credStore := memory.NewCredentialStore()
	users := memory.NewUserDirectory()
	finance := memory.NewFinanceReader()

	credentials, err := services.NewCredentialService(credStore, services.CredentialConfig{
		SigningSecret: []byte("test-signing-secret"),
		NumberPrefix:  "FQ",
	})
	require.NoError(t, err)

	celebrationSvc := services.NewCelebrationService(celebrations, users)
	t.Cleanup(celebrationSvc.Stop)

	evaluator := services.NewEvaluatorRegistry(events, finance, progressStore)
	engine := services.NewGoalEngine(events, progressStore, badges, users, evaluator, credentials, celebrationSvc)

	return NewEventHandler(engine, users), users
}

func authedRequest(method, target, body, clerkID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

func TestRecordEvent_Unauthenticated(t *testing.T) {
	handler, _ := newEventHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{"event_type":"overview_viewed"}`))
	rr := httptest.NewRecorder()
	handler.RecordEvent(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRecordEvent_UnknownEventType(t *testing.T) {
	handler, users := newEventHandlerFixture(t)
	users.AddUser("user_test_clerk", uuid.New(), "Jamie Lee")

	req := authedRequest(http.MethodPost, "/api/v1/events", `{"event_type":"made_up_event"}`, "user_test_clerk")
	rr := httptest.NewRecorder()
	handler.RecordEvent(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordEvent_UnknownUser(t *testing.T) {
	handler, _ := newEventHandlerFixture(t)

	req := authedRequest(http.MethodPost, "/api/v1/events", `{"event_type":"overview_viewed"}`, "user_missing")
	rr := httptest.NewRecorder()
	handler.RecordEvent(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecordEvent_CompletesGoal(t *testing.T) {
	handler, users := newEventHandlerFixture(t)
	users.AddUser("user_test_clerk", uuid.New(), "Jamie Lee")

	// the first overview view completes goal 1
	req := authedRequest(http.MethodPost, "/api/v1/events", `{"event_type":"overview_viewed"}`, "user_test_clerk")
	rr := httptest.NewRecorder()
	handler.RecordEvent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		CompletedGoalIDs []int `json:"completed_goal_ids"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []int{1}, resp.CompletedGoalIDs)
}
