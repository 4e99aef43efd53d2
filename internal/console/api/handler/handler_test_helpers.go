package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	mw "github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withSession injects an operator session into the request context.
func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(mw.WithSession(r.Context(), sess))
}

// backendCall is one request the fake backend received.
type backendCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakeBackend is a Sagipero API stand-in that records every call.
type fakeBackend struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu    sync.Mutex
	calls []backendCall
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux()}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := backendCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		json.NewDecoder(r.Body).Decode(&call.Body)
		fb.mu.Lock()
		fb.calls = append(fb.calls, call)
		fb.mu.Unlock()
		fb.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

// handle registers a canned JSON reply for a "METHOD /api/path" pattern.
func (fb *fakeBackend) handle(pattern string, status int, body any) {
	fb.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	})
}

func (fb *fakeBackend) recorded() []backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]backendCall(nil), fb.calls...)
}

func (fb *fakeBackend) client() *sagipero.Client {
	return sagipero.NewClient(fb.srv.URL+"/api",
		sagipero.WithToken("jwt"),
		sagipero.WithRetry(0, time.Millisecond),
	)
}

// session opens a console session bound to the fake backend.
func (fb *fakeBackend) session(t *testing.T) (*session.Store, *session.Session) {
	t.Helper()
	store := session.NewStore(session.Options{Logger: zerolog.Nop()})
	sess := store.Create(fb.client(), &sagipero.User{ID: "admin-1", Role: sagipero.RoleAdmin})
	t.Cleanup(store.CloseAll)
	return store, sess
}

// toastMessages lists the active toasts as "type: title | message".
func toastMessages(sess *session.Session) []string {
	var out []string
	for _, t := range sess.Toasts.Active() {
		out = append(out, t.Type+": "+t.Title+" | "+t.Message)
	}
	return out
}

const validID = "test-id-1"
