package sagipero

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListWeatherAlerts(ctx context.Context) ([]WeatherAlert, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/weather-alerts"})
	if err != nil {
		return nil, err
	}
	return decodeList[WeatherAlert](resp.Body)
}

// SendWeatherAlert publishes an alert. The backend fans it out to the
// targeted roles.
func (c *Client) SendWeatherAlert(ctx context.Context, alert WeatherAlert) (*WeatherAlert, error) {
	if alert.BroadcastAll {
		alert.TargetRoles = nil
	}
	var created WeatherAlert
	if err := c.doJSON(ctx, http.MethodPost, "/weather-alerts", alert, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteWeatherAlert(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodDelete, "/weather-alerts/"+url.PathEscape(id))
}
