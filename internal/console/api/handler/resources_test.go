package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponderList(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/users", http.StatusOK, []map[string]any{
		{"id": "r1", "role": "RESPONDER", "responderTypes": []string{"FIRE", "RESCUE"}, "responderStatus": "AVAILABLE"},
		{"id": "r2", "role": "RESPONDER", "responderTypes": "FIRE", "responderStatus": "ON_DUTY"},
		{"id": "r3", "role": "RESPONDER"},
	})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewResponder().List(rec, withSession(newRequest(http.MethodGet, "/responders?type=FIRE", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body responderListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Responders, 2)
	assert.Len(t, body.Types, 8)
	assert.Equal(t, 2, body.Stats["FIRE"].Total)
	assert.Equal(t, 1, body.Stats["FIRE"].Available)
	assert.Equal(t, 1, body.Stats["RESCUE"].Total)
	assert.Equal(t, "role=RESPONDER", fb.recorded()[0].Query)
}

func TestResponderToggleStatus(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"AVAILABLE", "ON_DUTY"},
		{"ON_DUTY", "AVAILABLE"},
		{"VEHICLE_UNAVAILABLE", "AVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.handle("POST /api/users/update-responder-status", http.StatusOK, nil)
			_, sess := fb.session(t)

			rec := httptest.NewRecorder()
			r := withChiURLParam(newRequest(http.MethodPost, "/responders/r1/status", map[string]string{"current": tt.current}), "id", "r1")
			NewResponder().ToggleStatus(rec, withSession(r, sess))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, map[string]any{"userId": "r1", "status": tt.want}, fb.recorded()[0].Body)
			assert.JSONEq(t, `{"id":"r1","status":"`+tt.want+`"}`, rec.Body.String())
		})
	}
}

func TestResponderSetTypes(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("PUT /api/users/{id}", http.StatusOK, nil)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/responders/r1/types", map[string]any{"responderTypes": []string{}}), "id", "r1")
	NewResponder().SetTypes(rec, withSession(r, sess))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, map[string]any{"responderTypes": []any{}}, fb.recorded()[0].Body)
	assert.Equal(t, []string{"success:  | Responder types updated"}, toastMessages(sess))

	rec = httptest.NewRecorder()
	r = withChiURLParam(newRequest(http.MethodPut, "/responders/r1/types", map[string]any{"responderTypes": []string{"PLUMBER"}}), "id", "r1")
	NewResponder().SetTypes(rec, withSession(r, sess))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResponderAssign(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/emergencies/{id}/assign", http.StatusOK, nil)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/responders/r1/assign", map[string]string{"emergencyId": "e7"}), "id", "r1")
	NewResponder().Assign(rec, withSession(r, sess))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	call := fb.recorded()[0]
	assert.Equal(t, "/api/emergencies/e7/assign", call.Path)
	assert.Equal(t, map[string]any{"responderId": "r1"}, call.Body)
}

func TestMapCreateCenter(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/evacuation-centers", http.StatusCreated, map[string]any{"id": "c1", "name": "Evac Center"})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewMap().CreateCenter(rec, withSession(newRequest(http.MethodPost, "/evacuation-centers", map[string]any{"lat": 14.83412, "lng": 120.73245}), sess))

	require.Equal(t, http.StatusCreated, rec.Code)
	sent := fb.recorded()[0].Body
	assert.Equal(t, "Evac Center", sent["name"])
	assert.Equal(t, "Lat:14.83412 Lng:120.73245", sent["address"])
	assert.Equal(t, float64(20), sent["capacity"])
	assert.Equal(t, []string{"success:  | Evacuation center created"}, toastMessages(sess))
}

func TestMapCreateCenter_OutOfRange(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewMap().CreateCenter(rec, withSession(newRequest(http.MethodPost, "/evacuation-centers", map[string]any{"lat": 95.0, "lng": 120.7}), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
	assert.Empty(t, fb.recorded())
}

func TestMapMarkers(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/emergencies", http.StatusOK, []map[string]any{
		{"id": "e1", "status": "PENDING", "location": map[string]any{"lat": 14.8, "lng": 120.7}},
	})
	fb.handle("GET /api/evacuation-centers", http.StatusOK, []map[string]any{
		{"id": "c1", "name": "Gym", "location": map[string]any{"lat": 14.9, "lng": 120.8}},
	})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewMap().Markers(rec, withSession(newRequest(http.MethodGet, "/map", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Type     string           `json:"type"`
		Features []map[string]any `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FeatureCollection", body.Type)
	assert.Len(t, body.Features, 2)
}

func TestVehicleList(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/vehicles", http.StatusOK, []map[string]any{
		{"id": "v1", "responderId": "r1", "plateNumber": "ABC-123", "model": "Ambulance", "active": true},
		{"id": "v2", "responderId": "r2", "plateNumber": "XYZ-999", "model": "Van", "active": false},
		{"id": "v3", "plateNumber": "POOL-1", "model": "Van", "active": true},
	})
	fb.handle("GET /api/users", http.StatusOK, []map[string]any{
		{"id": "r1", "name": "Ana Reyes", "role": "RESPONDER"},
		{"id": "r2", "name": "Ben", "role": "RESPONDER"},
	})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewVehicle().List(rec, withSession(newRequest(http.MethodGet, "/vehicles?status=active&search=reyes", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body vehicleListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Vehicles, 1)
	assert.Equal(t, "v1", body.Vehicles[0].ID)
	assert.Equal(t, 3, body.Stats.Total)
	assert.Equal(t, 2, body.Stats.Active)
	assert.Equal(t, 1, body.Stats.Available)
	assert.Len(t, body.Responders, 2)
}

func TestVehicleCreate(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/vehicles", http.StatusCreated, map[string]any{"id": "v9"})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewVehicle().Create(rec, withSession(newRequest(http.MethodPost, "/vehicles", map[string]any{
		"responderId": "r1",
		"plateNumber": "ABC-123",
	}), sess))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, fb.recorded()[0].Body["active"])
	assert.Equal(t, []string{"success:  | Vehicle created"}, toastMessages(sess))

	rec = httptest.NewRecorder()
	NewVehicle().Create(rec, withSession(newRequest(http.MethodPost, "/vehicles", map[string]any{"responderId": "r1"}), sess))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestVehicleDelete_FailureToasts(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("DELETE /api/vehicles/{id}", http.StatusConflict, map[string]string{"error": "vehicle is dispatched"})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodDelete, "/vehicles/v1?confirmed=1", nil), "id", "v1")
	NewVehicle().Delete(rec, withSession(r, sess))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, []string{"error: Failed to delete | Request timeout. Please try again."}, toastMessages(sess))
}

func TestInventoryList_ServerSideQuery(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("GET /api/inventory", http.StatusOK, []map[string]any{
		{"id": "i1", "responderId": "r1", "name": "Life vest", "unit": "pcs", "available": true},
		{"id": "i2", "responderId": "r1", "name": "Rope", "unit": "m", "available": true},
	})
	fb.handle("GET /api/users", http.StatusOK, []any{})
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewInventory().List(rec, withSession(newRequest(http.MethodGet, "/inventory?responderId=r1&availability=available&unit=PCS", nil), sess))

	require.Equal(t, http.StatusOK, rec.Code)
	var body inventoryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "i1", body.Items[0].ID)

	for _, c := range fb.recorded() {
		if c.Path == "/api/inventory" {
			assert.Equal(t, "available=true&responderId=r1", c.Query)
		}
	}
}

func TestInventoryCreate_NameRequired(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	NewInventory().Create(rec, withSession(newRequest(http.MethodPost, "/inventory", map[string]any{"name": " ", "quantity": 3}), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"error: Invalid item | Name required"}, toastMessages(sess))
}

func TestInventorySetAvailable(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("PUT /api/inventory/{id}", http.StatusOK, nil)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/inventory/i1/available", map[string]bool{"available": false}), "id", "i1")
	NewInventory().SetAvailable(rec, withSession(r, sess))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, map[string]any{"available": false}, fb.recorded()[0].Body)
	assert.Equal(t, []string{"success:  | Marked unavailable"}, toastMessages(sess))
}
