package sagipero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindRetryableServer
	KindAuth
	KindPermission
	KindNotFound
	KindRequestTimeout
	KindRateLimited
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRetryableServer:
		return "server"
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindRequestTimeout:
		return "request_timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgNetwork       = "Unable to connect to the server. Please check your internet connection and try again."
	MsgAuth          = "Authentication failed. Please log in again."
	MsgPermission    = "You do not have permission to perform this action."
	MsgNotFound      = "The requested resource was not found."
	MsgTimeout       = "Request timeout. Please try again."
	MsgRateLimited   = "Too many requests. Please wait a moment before trying again."
	MsgDatabase      = "Database connection issue. The system is working to resolve this. Please try again in a moment."
	MsgServer        = "Server error. Please try again in a few moments."
	MsgUnexpected    = "An unexpected error occurred. Please try again."
	MsgCancelled     = "Request was cancelled."
	retryableMarkers = "database|connection|timeout|Can't reach database server"
)

// APIError is returned for every failed call to the backend.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Method     string
	Path       string
	RetryCount int
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sagipero API %s %s", e.Method, e.Path)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether the UI should offer a retry for this error.
// 409 is treated like 408 to match the backend's historic behavior.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRetryableServer, KindRequestTimeout, KindRateLimited:
		return true
	}
	return false
}

// UserMessage returns the human readable text for the error.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return MsgNetwork
	case KindAuth:
		return MsgAuth
	case KindPermission:
		return MsgPermission
	case KindNotFound:
		return MsgNotFound
	case KindRequestTimeout:
		return MsgTimeout
	case KindRateLimited:
		return MsgRateLimited
	case KindRetryableServer:
		switch e.StatusCode {
		case 500, 502, 503, 504:
			lower := strings.ToLower(e.Message)
			if strings.Contains(lower, "database") || strings.Contains(lower, "connection") {
				return MsgDatabase
			}
		}
		return MsgServer
	}
	if e.Message != "" {
		return e.Message
	}
	return MsgUnexpected
}

// UserMessage maps any error from this package to display text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return MsgCancelled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return MsgUnexpected
}

// IsAuth reports whether err is a 401 from the backend.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// kindForStatus maps an HTTP status to an error kind.
func kindForStatus(status int, message string) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusRequestTimeout, status == http.StatusConflict:
		return KindRequestTimeout
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindRetryableServer
	case status >= 400 && message != "":
		return KindValidation
	}
	return KindUnknown
}

// serverMessage extracts the error or message field of a JSON error body.
func serverMessage(body []byte) string {
	var env struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	for _, v := range []any{env.Error, env.Message} {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case map[string]any:
			if m, ok := t["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	return ""
}

func newStatusError(method, path string, status int, body []byte) *APIError {
	msg := serverMessage(body)
	return &APIError{
		Kind:       kindForStatus(status, msg),
		StatusCode: status,
		Message:    msg,
		Method:     method,
		Path:       path,
		Body:       body,
	}
}

func newNetworkError(method, path string, err error) *APIError {
	return &APIError{
		Kind:   KindNetwork,
		Method: method,
		Path:   path,
		Err:    err,
	}
}

// shouldRetry is the transport retry predicate: no response, a 5xx, or a
// message naming a transient database or connection failure.
func shouldRetry(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Kind == KindNetwork || apiErr.StatusCode >= 500 {
		return true
	}
	return hasRetryableMarker(apiErr.Message)
}

func hasRetryableMarker(msg string) bool {
	if msg == "" {
		return false
	}
	for _, m := range strings.Split(retryableMarkers, "|") {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
