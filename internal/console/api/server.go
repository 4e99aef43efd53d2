package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/console/api/handler"
	mw "github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/console/web"
	"github.com/sagipero/admin-console/internal/report"
)

// Deps are the collaborators the console is built from.
type Deps struct {
	Backend    *handler.Backend
	Sessions   *session.Store
	Health     handler.HealthSource
	Forecaster handler.Forecaster
	Archiver   *report.Archiver
	Location   *time.Location

	// CallBudget is the write deadline given to each request. Zero keeps the
	// server's WriteTimeout.
	CallBudget time.Duration
}

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	deps        Deps
	corsOrigins []string
}

func NewServer(logger zerolog.Logger, corsOrigins []string, deps Deps) *Server {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		deps:        deps,
		corsOrigins: corsOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.corsOrigins))
	s.router.Use(mw.WriteBudget(s.deps.CallBudget))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// Health checks
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Dashboard page
	s.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.Index)
	})

	auth := handler.NewAuth(s.deps.Backend, s.deps.Sessions)
	s.router.Post("/auth/login", auth.Login)

	settings := handler.NewSettings(s.deps.Backend)
	s.router.Get("/settings", settings.Get)
	s.router.Put("/settings", settings.Update)
	s.router.Post("/settings/test", settings.Test)

	// Live feed WebSocket (query-param auth, outside session middleware)
	live := handler.NewLive(s.deps.Sessions, s.deps.Health)
	s.router.Get("/live", live.Connect)

	// Forecast is public data and needs no session.
	wx := handler.NewWeather(s.deps.Forecaster)
	s.router.Get("/weather/forecast", wx.Forecast)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.deps.Sessions))

		r.Post("/auth/logout", auth.Logout)
		r.Get("/me", auth.Me)

		em := handler.NewEmergency(s.deps.Location)
		r.Get("/emergencies", em.Dashboard)
		r.Get("/emergencies/history", em.History)
		r.Get("/emergencies/fraud", em.Fraud)
		r.Get("/emergencies/assign-options", em.AssignOptions)
		r.Get("/emergencies/{id}/history", em.Timeline)
		r.Post("/emergencies/{id}/assign", em.Assign)
		r.Put("/emergencies/{id}/unmark-fraud", em.UnmarkFraud)

		mp := handler.NewMap()
		r.Get("/map", mp.Markers)
		r.Get("/evacuation-centers", mp.ListCenters)
		r.Post("/evacuation-centers", mp.CreateCenter)

		user := handler.NewUser()
		r.Get("/users", user.List)
		r.Post("/users", user.Create)
		r.Get("/users/locations", user.Locations)
		r.Put("/users/{id}", user.Update)
		r.Delete("/users/{id}", user.Delete)

		responder := handler.NewResponder()
		r.Get("/responders", responder.List)
		r.Put("/responders/{id}/types", responder.SetTypes)
		r.Post("/responders/{id}/status", responder.ToggleStatus)
		r.Post("/responders/{id}/assign", responder.Assign)

		vehicle := handler.NewVehicle()
		r.Get("/vehicles", vehicle.List)
		r.Post("/vehicles", vehicle.Create)
		r.Put("/vehicles/{id}", vehicle.Update)
		r.Put("/vehicles/{id}/active", vehicle.SetActive)
		r.Delete("/vehicles/{id}", vehicle.Delete)

		inventory := handler.NewInventory()
		r.Get("/inventory", inventory.List)
		r.Post("/inventory", inventory.Create)
		r.Put("/inventory/{id}", inventory.Update)
		r.Put("/inventory/{id}/available", inventory.SetAvailable)
		r.Delete("/inventory/{id}", inventory.Delete)

		r.Get("/weather-alerts", wx.ListAlerts)
		r.Post("/weather-alerts", wx.SendAlert)
		r.Delete("/weather-alerts/{id}", wx.DeleteAlert)

		media := handler.NewMedia()
		r.Get("/media", media.List)
		r.Get("/media/stats", media.Stats)
		r.Post("/media/{id}/verify", media.Verify)
		r.Patch("/media/{id}/status", media.SetStatus)
		r.Delete("/media/{id}", media.Delete)

		notification := handler.NewNotification()
		r.Get("/notifications", notification.List)
		r.Put("/notifications/{id}/read", notification.MarkRead)
		r.Post("/notifications/send", notification.Send)
		r.Post("/notifications/test-push", notification.TestPush)
		r.Post("/articles", notification.PreviewArticle)

		rep := handler.NewReport(s.deps.Archiver)
		r.Get("/reports/summary", rep.Summary)
		r.Get("/reports/summary.csv", rep.VisibleCSV)
		r.Get("/reports/summary.json", rep.RawJSON)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleReadyz reports whether the Sagipero backend answers its health check.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.deps.Backend.Health(ctx); err != nil {
		checks["backend"] = err.Error()
		healthy = false
	} else {
		checks["backend"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
