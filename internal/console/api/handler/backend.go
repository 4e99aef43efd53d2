package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// Backend resolves the API base new sessions talk to. The base comes from
// the saved settings when present and from configuration otherwise.
type Backend struct {
	mu       sync.RWMutex
	settings *config.Settings
	fallback string
	persist  bool
	opts     []sagipero.Option
	hc       *http.Client
}

// NewBackend builds a Backend. When persist is false, settings changes are
// kept in memory only.
func NewBackend(settings *config.Settings, fallback string, persist bool, opts ...sagipero.Option) *Backend {
	if settings == nil {
		settings = &config.Settings{}
	}
	return &Backend{
		settings: settings,
		fallback: fallback,
		persist:  persist,
		opts:     opts,
		hc:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *Backend) APIBase() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings.ResolveAPIBase(b.fallback)
}

// SetAPIBase saves a new API base. An empty base restores the default.
func (b *Backend) SetAPIBase(base string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.settings.APIBase
	b.settings.APIBase = strings.TrimRight(strings.TrimSpace(base), "/")
	if !b.persist {
		return nil
	}
	if err := b.settings.Save(); err != nil {
		b.settings.APIBase = prev
		return err
	}
	return nil
}

// NewClient returns a client bound to the current API base.
func (b *Backend) NewClient() *sagipero.Client {
	return sagipero.NewClient(b.APIBase(), b.opts...)
}

// Health probes the current API base. It satisfies health.Prober.
func (b *Backend) Health(ctx context.Context) error {
	return sagipero.Probe(ctx, b.hc, b.APIBase())
}

// Settings serves the backend connection settings.
type Settings struct {
	backend *Backend
}

func NewSettings(backend *Backend) *Settings {
	return &Settings{backend: backend}
}

type settingsResponse struct {
	APIBase   string `json:"apiBase"`
	HealthURL string `json:"healthUrl"`
	Default   string `json:"default"`
}

type settingsRequest struct {
	APIBase string `json:"apiBase" validate:"omitempty,url"`
}

type testResult struct {
	OK      bool   `json:"ok"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (h *Settings) view() settingsResponse {
	base := h.backend.APIBase()
	return settingsResponse{
		APIBase:   base,
		HealthURL: sagipero.HealthURL(base),
		Default:   h.backend.fallback,
	}
}

func (h *Settings) Get(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.view())
}

// Update saves the API base. Existing sessions keep their client until
// the operator signs in again.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.backend.SetAPIBase(req.APIBase); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, h.view())
}

// Test probes an API base without saving it. An empty body tests the
// current base.
func (h *Settings) Test(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if r.ContentLength != 0 {
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	base := strings.TrimRight(strings.TrimSpace(req.APIBase), "/")
	if base == "" {
		base = h.backend.APIBase()
	}

	res := testResult{URL: sagipero.HealthURL(base), OK: true, Message: "Backend reachable"}
	if err := sagipero.Probe(r.Context(), h.backend.hc, base); err != nil {
		res.OK = false
		res.Message = sagipero.UserMessage(err)
	}
	response.WriteJSON(w, http.StatusOK, res)
}
