// Package weather fetches Open-Meteo forecasts and builds weather alerts for
// the Hagonoy area.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// Hagonoy is the default center of the forecast and alert map.
var Hagonoy = struct{ Lat, Lng float64 }{Lat: 14.834, Lng: 120.732}

// HourlyLimit is the number of forecast hours offered for alerts.
const HourlyLimit = 24

// Hour is one hourly forecast entry. Index is its position in the full
// forecast and is what alerts reference.
type Hour struct {
	Time  string  `json:"time"`
	Label string  `json:"label"`
	Temp  float64 `json:"temp"`
	Code  int     `json:"code"`
	Text  string  `json:"text"`
	Wind  float64 `json:"wind"`
	Dir   float64 `json:"dir"`
	Index int     `json:"index"`
}

// Current is the current conditions block.
type Current struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	Code          int     `json:"weathercode"`
	Text          string  `json:"text"`
}

type Forecast struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Current *Current `json:"current,omitempty"`
	Hours   []Hour   `json:"hours"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "weather").Logger(),
	}
}

type forecastResponse struct {
	CurrentWeather *Current `json:"current_weather"`
	Hourly         struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		WeatherCode   []int     `json:"weathercode"`
		WindSpeed     []float64 `json:"windspeed_10m"`
		WindDirection []float64 `json:"winddirection_10m"`
	} `json:"hourly"`
}

// Forecast fetches the hourly forecast for a point, in Manila time.
func (c *Client) Forecast(ctx context.Context, lat, lng float64) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("hourly", "temperature_2m,weathercode,windspeed_10m,winddirection_10m")
	q.Set("current_weather", "true")
	q.Set("timezone", "Asia/Manila")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create forecast request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch forecast: status %d: %s", resp.StatusCode, string(body))
	}

	var raw forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	f := &Forecast{Lat: lat, Lng: lng, Hours: hoursOf(raw)}
	if raw.CurrentWeather != nil {
		cur := *raw.CurrentWeather
		cur.Text = Describe(cur.Code).Label
		f.Current = &cur
	}
	c.logger.Debug().Float64("lat", lat).Float64("lng", lng).Int("hours", len(f.Hours)).Msg("forecast loaded")
	return f, nil
}

func hoursOf(raw forecastResponse) []Hour {
	h := raw.Hourly
	n := min(len(h.Time), HourlyLimit)
	out := make([]Hour, 0, n)
	for i := 0; i < n; i++ {
		hour := Hour{Time: h.Time[i], Label: HourLabel(h.Time[i]), Index: i}
		if i < len(h.Temperature) {
			hour.Temp = h.Temperature[i]
		}
		if i < len(h.WeatherCode) {
			hour.Code = h.WeatherCode[i]
		}
		if i < len(h.WindSpeed) {
			hour.Wind = h.WindSpeed[i]
		}
		if i < len(h.WindDirection) {
			hour.Dir = h.WindDirection[i]
		}
		hour.Text = Describe(hour.Code).Label
		out = append(out, hour)
	}
	return out
}

// HourLabel renders an Open-Meteo local timestamp as "3 PM". Unparseable
// input is returned unchanged.
func HourLabel(ts string) string {
	t, err := time.ParseInLocation("2006-01-02T15:04", ts, Manila())
	if err != nil {
		return ts
	}
	return t.Format("3 PM")
}
