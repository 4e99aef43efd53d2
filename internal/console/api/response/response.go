package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sagipero/admin-console/internal/sagipero"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// ErrorResponse is the body of a failed backend call.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Logout    bool   `json:"logout,omitempty"`
	Retries   int    `json:"retries,omitempty"`
}

// WriteClientError maps a backend client error to an HTTP status and the
// user-facing message. Authentication failures set logout so the page can
// return to the login screen.
func WriteClientError(w http.ResponseWriter, err error) {
	var apiErr *sagipero.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, sagipero.ErrMissingID) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, sagipero.UserMessage(err))
		return
	}

	body := ErrorResponse{
		Error:     apiErr.UserMessage(),
		Kind:      apiErr.Kind.String(),
		Retryable: apiErr.Retryable(),
		Retries:   apiErr.RetryCount,
	}

	status := http.StatusBadGateway
	switch apiErr.Kind {
	case sagipero.KindAuth:
		status = http.StatusUnauthorized
		body.Logout = true
	case sagipero.KindPermission:
		status = http.StatusForbidden
	case sagipero.KindNotFound:
		status = http.StatusNotFound
	case sagipero.KindRateLimited:
		status = http.StatusTooManyRequests
	case sagipero.KindValidation:
		status = http.StatusBadRequest
	case sagipero.KindRequestTimeout:
		status = http.StatusGatewayTimeout
	case sagipero.KindNetwork, sagipero.KindRetryableServer:
		status = http.StatusBadGateway
	default:
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
	}
	WriteJSON(w, status, body)
}
