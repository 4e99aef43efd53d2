package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagipero/admin-console/internal/weather"
)

type fakeForecaster struct {
	lat, lng float64
	err      error
}

func (f *fakeForecaster) Forecast(_ context.Context, lat, lng float64) (*weather.Forecast, error) {
	f.lat, f.lng = lat, lng
	if f.err != nil {
		return nil, f.err
	}
	return &weather.Forecast{Lat: lat, Lng: lng, Hours: []weather.Hour{}}, nil
}

func newWeatherHandler(f Forecaster) *Weather {
	h := NewWeather(f)
	h.now = func() time.Time { return time.Date(2024, 1, 10, 15, 0, 0, 0, weather.Manila()) }
	return h
}

func TestWeatherSendAlert_Daily(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("POST /api/weather-alerts", http.StatusCreated, map[string]any{"id": "wa1", "title": "Weather Alert"})
	_, sess := fb.session(t)

	h := newWeatherHandler(&fakeForecaster{})
	rec := httptest.NewRecorder()
	h.SendAlert(rec, withSession(newRequest(http.MethodPost, "/weather-alerts", map[string]any{
		"daily": true,
		"scope": "today",
	}), sess))

	require.Equal(t, http.StatusCreated, rec.Code)
	sent := fb.recorded()[0].Body
	assert.Equal(t, "Weather Alert", sent["title"])
	assert.Equal(t, "Daily forecast alert", sent["message"])
	assert.Equal(t, "today", sent["scope"])
	assert.Equal(t, "MEDIUM", sent["severity"])
	assert.Equal(t, true, sent["broadcastAll"])
	assert.Equal(t, "2024-01-09T16:00:00Z", sent["startAt"])
	assert.Equal(t, []string{"success:  | Weather alert sent"}, toastMessages(sess))
}

func TestWeatherSendAlert_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"hourly without hours", map[string]any{"daily": false}, "hourly alert needs at least one forecast hour"},
		{"targeted without roles", map[string]any{"daily": true, "broadcastAll": false}, "targeted alert needs at least one role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			_, sess := fb.session(t)

			rec := httptest.NewRecorder()
			newWeatherHandler(&fakeForecaster{}).SendAlert(rec, withSession(newRequest(http.MethodPost, "/weather-alerts", tt.body), sess))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeErrorResponse(rec)["error"])
			assert.Equal(t, []string{"error: Failed to send | " + tt.want}, toastMessages(sess))
			assert.Empty(t, fb.recorded())
		})
	}
}

func TestWeatherSendAlert_InvalidSeverity(t *testing.T) {
	fb := newFakeBackend(t)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	newWeatherHandler(&fakeForecaster{}).SendAlert(rec, withSession(newRequest(http.MethodPost, "/weather-alerts", map[string]any{
		"daily":    true,
		"severity": "APOCALYPTIC",
	}), sess))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestWeatherDeleteAlert(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("DELETE /api/weather-alerts/{id}", http.StatusNoContent, nil)
	_, sess := fb.session(t)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodDelete, "/weather-alerts/wa1", nil), "id", "wa1")
	newWeatherHandler(&fakeForecaster{}).DeleteAlert(rec, withSession(r, sess))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/api/weather-alerts/wa1", fb.recorded()[0].Path)
}

func TestWeatherForecast(t *testing.T) {
	t.Run("default area", func(t *testing.T) {
		f := &fakeForecaster{}
		rec := httptest.NewRecorder()
		newWeatherHandler(f).Forecast(rec, newRequest(http.MethodGet, "/weather/forecast", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, weather.Hagonoy.Lat, f.lat)
		assert.Equal(t, weather.Hagonoy.Lng, f.lng)
	})

	t.Run("explicit point", func(t *testing.T) {
		f := &fakeForecaster{}
		rec := httptest.NewRecorder()
		newWeatherHandler(f).Forecast(rec, newRequest(http.MethodGet, "/weather/forecast?lat=14.5&lng=121.25", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 14.5, f.lat)
		assert.Equal(t, 121.25, f.lng)
	})

	t.Run("missing lng", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newWeatherHandler(&fakeForecaster{}).Forecast(rec, newRequest(http.MethodGet, "/weather/forecast?lat=14.5", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `missing query parameter "lng"`, decodeErrorResponse(rec)["error"])
	})

	t.Run("bad lat", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newWeatherHandler(&fakeForecaster{}).Forecast(rec, newRequest(http.MethodGet, "/weather/forecast?lat=north&lng=1", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeErrorResponse(rec)["error"], `invalid query parameter "lat"`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newWeatherHandler(&fakeForecaster{err: errors.New("down")}).Forecast(rec, newRequest(http.MethodGet, "/weather/forecast", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Failed to load forecast", decodeErrorResponse(rec)["error"])
	})
}
