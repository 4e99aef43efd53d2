package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/weather"
)

// Forecaster fetches an hourly forecast for a point.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lng float64) (*weather.Forecast, error)
}

type Weather struct {
	forecaster Forecaster
	now        func() time.Time
}

func NewWeather(forecaster Forecaster) *Weather {
	return &Weather{forecaster: forecaster, now: time.Now}
}

func (h *Weather) ListAlerts(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	alerts, err := sess.Client.ListWeatherAlerts(r.Context())
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, alerts)
}

// SendAlert builds and sends a daily or hourly weather alert.
func (h *Weather) SendAlert(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req weather.AlertRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	alert, err := weather.NewAlert(req, h.now())
	if err != nil {
		badRequest(w, sess, "Failed to send", err.Error())
		return
	}

	sent, err := sess.Client.SendWeatherAlert(r.Context(), alert)
	if err != nil {
		fail(w, r, sess, "Failed to send", err)
		return
	}
	done(sess, "Weather alert sent")
	response.WriteJSON(w, http.StatusCreated, sent)
}

func (h *Weather) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if err := sess.Client.DeleteWeatherAlert(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Forecast returns the hourly forecast. Without coordinates the default
// service area is used.
func (h *Weather) Forecast(w http.ResponseWriter, r *http.Request) {
	lat, lng := weather.Hagonoy.Lat, weather.Hagonoy.Lng
	if r.URL.Query().Has("lat") || r.URL.Query().Has("lng") {
		var err error
		if lat, err = request.Float(r, "lat"); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if lng, err = request.Float(r, "lng"); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	fc, err := h.forecaster.Forecast(r.Context(), lat, lng)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("forecast fetch failed")
		response.WriteError(w, http.StatusBadGateway, "Failed to load forecast")
		return
	}
	response.WriteJSON(w, http.StatusOK, fc)
}
