package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmergencyHandler() *Emergency {
	h := NewEmergency(time.UTC)
	h.now = func() time.Time { return time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC) }
	return h
}

func TestEmergencyDashboard(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies", http.StatusOK, []map[string]any{
		{"id": "e1", "status": "PENDING", "priority": "HIGH", "createdAt": "2024-01-10T08:00:00Z", "user": map[string]any{"barangay": "Barangay 1"}},
		{"id": "e2", "status": "IN_PROGRESS", "priority": "low", "createdAt": "2024-01-10T09:00:00Z"},
		{"id": "e3", "status": "RESOLVED", "priority": "high", "createdAt": "2024-01-09T09:00:00Z"},
	})
	fb.handle("GET /api/users", http.StatusOK, map[string]any{"data": []map[string]any{
		{"id": "r1", "role": "RESPONDER", "responderStatus": "AVAILABLE", "barangay": "Barangay 2"},
		{"id": "u1", "role": "RESIDENT", "barangay": "Barangay 1"},
	}})
	fb.handle("GET /api/evacuation-centers", http.StatusOK, []map[string]any{{"id": "c1", "name": "Gym"}})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.Dashboard(rec, withSession(newRequest(http.MethodGet, "/emergencies?priority=high", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Summary.Total)
	assert.Equal(t, 2, body.Summary.Active)
	assert.Equal(t, 1, body.Summary.AvailableResponders)
	require.Len(t, body.Emergencies, 2)
	assert.Equal(t, "e1", body.Emergencies[0].ID())
	assert.Equal(t, "e3", body.Emergencies[1].ID())
	assert.Equal(t, []string{"Barangay 1", "Barangay 2"}, body.Barangays)
	require.Len(t, body.Responders, 1)
	assert.Equal(t, "r1", body.Responders[0].ID)
	assert.Len(t, body.EvacuationCenters, 1)
}

func TestEmergencyDashboard_BackendRejectsToken(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies", http.StatusUnauthorized, map[string]string{"error": "jwt expired"})
	fb.handle("GET /api/users", http.StatusOK, []any{})
	fb.handle("GET /api/evacuation-centers", http.StatusOK, []any{})
	store, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.Dashboard(rec, withSession(newRequest(http.MethodGet, "/emergencies", nil), sess))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["logout"])
	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
}

func TestEmergencyDashboard_MissingSession(t *testing.T) {
	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.Dashboard(rec, newRequest(http.MethodGet, "/emergencies", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing session", decodeErrorResponse(rec)["error"])
}

func TestEmergencyHistory(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies/history/all", http.StatusOK, []map[string]any{
		{"id": "a", "type": "FIRE", "status": "RESOLVED", "created_at": "2024-01-10T08:00:00Z"},
		{"id": "b", "type": "FLOOD", "status": "PENDING", "created_at": "2024-01-09T08:00:00Z"},
		{"id": "c", "type": "FIRE", "status": "PENDING"},
	})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.History(rec, withSession(newRequest(http.MethodGet, "/emergencies/history?type=FIRE", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 2, body.Matched)
	require.Len(t, body.Buckets, 2)
	assert.Equal(t, "2024-01-10", body.Buckets[0].Key)
	assert.Equal(t, "unknown", body.Buckets[1].Key)
	assert.Equal(t, []string{"FIRE", "FLOOD"}, body.Types)
	assert.Len(t, body.DateOptions, 3)
}

func TestEmergencyTimeline(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies/{id}/history", http.StatusOK, []map[string]any{
		{"id": 1, "event_type": "CREATED", "created_at": "2024-01-10T08:00:00Z", "payload": map[string]any{"user": map[string]any{"name": "Ana"}}},
		{"id": 2, "event_type": "ACCEPTED", "created_at": "2024-01-10T08:01:00Z"},
		{"id": 3, "event_type": "ARRIVED", "created_at": "2024-01-10T08:11:30Z"},
	})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/emergencies/e1/history", nil), "id", "e1")
	h.Timeline(rec, withSession(r, sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	events := body["events"].([]any)
	require.Len(t, events, 3)
	assert.Equal(t, "Reported by Ana", events[0].(map[string]any)["text"])
	rt := body["responseTimes"].(map[string]any)
	assert.Equal(t, "1m 0s", rt["to_accept"])
	assert.Equal(t, "10m 30s", rt["accept_to_arrive"])
	assert.Equal(t, "11m 30s", rt["total"])
}

func TestEmergencyTimeline_MissingID(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.Timeline(rec, withSession(newRequest(http.MethodGet, "/emergencies//history", nil), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required ID", decodeErrorResponse(rec)["error"])
}

func TestEmergencyAssign(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/emergencies/assign", http.StatusOK, map[string]any{"ok": true})
	fb.handle("PUT /api/vehicles/{id}", http.StatusOK, map[string]any{})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/emergencies/e1/assign", map[string]any{
		"responderId": "r1",
		"vehicleIds":  []string{"v1", "v2"},
	})
	h.Assign(rec, withSession(withChiURLParam(r, "id", "e1"), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	calls := fb.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/emergencies/assign", calls[0].Path)
	assert.Equal(t, map[string]any{"emergencyId": "e1", "responderId": "r1"}, calls[0].Body)
	assert.Equal(t, "/api/vehicles/v1", calls[1].Path)
	assert.Equal(t, map[string]any{"active": false}, calls[1].Body)
	assert.Equal(t, "/api/vehicles/v2", calls[2].Path)
	assert.Equal(t, []string{"success:  | Assigned and vehicles dispatched"}, toastMessages(sess))
}

func TestEmergencyAssign_Failure(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/emergencies/assign", http.StatusNotFound, map[string]string{"error": "emergency not found"})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/emergencies/e1/assign", map[string]any{"responderId": "r1", "vehicleIds": []string{"v1"}})
	h.Assign(rec, withSession(withChiURLParam(r, "id", "e1"), sess))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, fb.recorded(), 1)
	assert.Equal(t, []string{"error: Failed to assign | The requested resource was not found."}, toastMessages(sess))
}

func TestEmergencyAssign_MissingResponder(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/emergencies/e1/assign", map[string]any{})
	h.Assign(rec, withSession(withChiURLParam(r, "id", "e1"), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
	assert.Empty(t, fb.recorded())
}

func TestEmergencyAssign_InvalidJSON(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/emergencies/e1/assign", "{bad json")
	h.Assign(rec, withSession(withChiURLParam(r, "id", "e1"), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid JSON")
}

func TestEmergencyAssignOptions(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/users", http.StatusOK, []map[string]any{
		{"id": "r1", "role": "RESPONDER", "responderTypes": []string{"FIRE"}},
		{"id": "r2", "role": "RESPONDER", "responderTypes": "MEDICAL"},
	})
	fb.handle("GET /api/vehicles", http.StatusOK, []map[string]any{
		{"id": "v1", "responderId": "r1", "plateNumber": "ABC", "active": true},
		{"id": "v2", "responderId": "r1", "plateNumber": "DEF", "active": false},
		{"id": "v3", "responderId": "r2", "plateNumber": "GHI", "active": true},
	})
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.AssignOptions(rec, withSession(newRequest(http.MethodGet, "/emergencies/assign-options?type=FIRE&responderId=r1", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body assignOptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Responders, 1)
	assert.Equal(t, "r1", body.Responders[0].ID)
	require.Len(t, body.Vehicles, 1)
	assert.Equal(t, "v1", body.Vehicles[0].ID)
}

func TestEmergencyUnmarkFraud(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("PUT /api/emergencies/{id}/unmark-fraud", http.StatusOK, nil)
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/emergencies/e9/unmark-fraud", nil), "id", validID)
	h.UnmarkFraud(rec, withSession(r, sess))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/api/emergencies/"+validID+"/unmark-fraud", fb.recorded()[0].Path)
	assert.Equal(t, []string{"success:  | Unmarked fraud"}, toastMessages(sess))
}

func TestEmergencyFraud_LoadFailureToasts(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies/fraud/list", http.StatusForbidden, nil)
	_, sess := fb.session(t)

	h := newEmergencyHandler()
	rec := httptest.NewRecorder()
	h.Fraud(rec, withSession(newRequest(http.MethodGet, "/emergencies/fraud", nil), sess))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, []string{"error: Failed to load fraud list | You do not have permission to perform this action."}, toastMessages(sess))
}
