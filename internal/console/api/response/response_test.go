package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagipero/admin-console/internal/sagipero"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	WriteJSON(w, http.StatusOK, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "world", body["hello"])
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "something went wrong", body["error"])
}

func TestWriteJSON_NilValue(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null\n", w.Body.String())
}

func TestWriteClientError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantLogout bool
	}{
		{"auth", &sagipero.APIError{Kind: sagipero.KindAuth, StatusCode: 401}, http.StatusUnauthorized, sagipero.MsgAuth, true},
		{"permission", &sagipero.APIError{Kind: sagipero.KindPermission, StatusCode: 403}, http.StatusForbidden, sagipero.MsgPermission, false},
		{"not found", &sagipero.APIError{Kind: sagipero.KindNotFound, StatusCode: 404}, http.StatusNotFound, sagipero.MsgNotFound, false},
		{"validation", &sagipero.APIError{Kind: sagipero.KindValidation, StatusCode: 422, Message: "name is required"}, http.StatusBadRequest, "name is required", false},
		{"rate limited", &sagipero.APIError{Kind: sagipero.KindRateLimited, StatusCode: 429}, http.StatusTooManyRequests, sagipero.MsgRateLimited, false},
		{"server", &sagipero.APIError{Kind: sagipero.KindRetryableServer, StatusCode: 500}, http.StatusBadGateway, sagipero.MsgServer, false},
		{"network", &sagipero.APIError{Kind: sagipero.KindNetwork}, http.StatusBadGateway, sagipero.MsgNetwork, false},
		{"missing id", sagipero.ErrMissingID, http.StatusBadRequest, "missing required ID", false},
		{"plain", errors.New("boom"), http.StatusInternalServerError, sagipero.MsgUnexpected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteClientError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.Equal(t, tt.wantLogout, body.Logout)
		})
	}
}

func TestWriteClientError_ReportsRetries(t *testing.T) {
	w := httptest.NewRecorder()
	WriteClientError(w, &sagipero.APIError{Kind: sagipero.KindRetryableServer, StatusCode: 503, RetryCount: 3})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Retries)
	assert.True(t, body.Retryable)

	w = httptest.NewRecorder()
	WriteClientError(w, &sagipero.APIError{Kind: sagipero.KindNotFound, StatusCode: 404})
	assert.NotContains(t, w.Body.String(), "retries")
}
