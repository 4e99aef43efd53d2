package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/api/handler"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/sagipero"
)

func newTestServer(t *testing.T, backend http.Handler) (*Server, *session.Store) {
	t.Helper()
	return newBudgetedTestServer(t, backend, 0)
}

func newBudgetedTestServer(t *testing.T, backend http.Handler, budget time.Duration) (*Server, *session.Store) {
	t.Helper()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	store := session.NewStore(session.Options{Logger: zerolog.Nop()})
	t.Cleanup(store.CloseAll)

	srv := NewServer(zerolog.Nop(), []string{"*"}, Deps{
		Backend:    handler.NewBackend(nil, upstream.URL+"/api", false, sagipero.WithRetry(0, time.Millisecond)),
		Sessions:   store,
		CallBudget: budget,
	})
	return srv, store
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode int
	}{
		{"backend up", http.StatusOK, http.StatusOK},
		{"backend down", http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var checks map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "ok", checks["backend"])
			} else {
				assert.NotEqual(t, "ok", checks["backend"])
			}
		})
	}
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<html")
	// Map popups drive the assignment endpoints.
	assert.Contains(t, rec.Body.String(), "props.assignId")
	assert.Contains(t, rec.Body.String(), "/emergencies/assign-options")
	assert.Contains(t, rec.Body.String(), "'/assign'")
}

func TestAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/emergencies", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergencies", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["logout"])
}

func TestLoginThenMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"jwt","user":{"id":"a1","role":"ADMIN"}}`))
	})
	srv, store := newTestServer(t, mux)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.Equal(t, 1, store.Len())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a1"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestConfirmedDelete_OutlivesServerWriteTimeout(t *testing.T) {
	var deletes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"jwt","user":{"id":"a1","role":"ADMIN"}}`))
	})
	mux.HandleFunc("DELETE /api/vehicles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		deletes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	srv, store := newBudgetedTestServer(t, mux, time.Second)

	ts := httptest.NewUnstartedServer(srv)
	ts.Config.WriteTimeout = 200 * time.Millisecond
	ts.Start()
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/auth/login", "application/json", strings.NewReader(`{"email":"admin@example.com","password":"pw"}`))
	require.NoError(t, err)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()

	sess, ok := store.Get(login.Token)
	require.True(t, ok)
	unsub := sess.Confirms.Subscribe(func(ev bus.ConfirmEvent) {
		if ev.Kind == bus.ConfirmOpen {
			go func(id string) {
				// The operator answers well after the server's WriteTimeout.
				time.Sleep(500 * time.Millisecond)
				sess.Confirms.Resolve(id, true)
			}(ev.Prompt.ID)
		}
	})
	defer unsub()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/vehicles/v1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["deleted"])
	assert.Equal(t, int32(1), deletes.Load())
}
