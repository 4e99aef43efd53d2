package sagipero

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/sagipero/admin-console/internal/emergency"
)

// ListMedia returns submitted media, optionally restricted to a review state.
func (c *Client) ListMedia(ctx context.Context, status string) ([]MediaSubmission, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/media/admin/all", Query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[MediaSubmission](resp.Body)
}

func (c *Client) MediaStats(ctx context.Context) (*MediaStats, error) {
	var stats MediaStats
	if err := c.get(ctx, "/media/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// VerifyMedia turns a media submission into an emergency.
func (c *Client) VerifyMedia(ctx context.Context, mediaID string) (emergency.Record, error) {
	var res struct {
		Emergency emergency.Record `json:"emergency"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/media/admin/verify",
		map[string]string{"mediaId": mediaID}, &res); err != nil {
		return nil, err
	}
	return res.Emergency, nil
}

// SetMediaStatus approves or rejects a submission with optional notes.
func (c *Client) SetMediaStatus(ctx context.Context, id, status, notes string) error {
	return c.doJSON(ctx, http.MethodPatch, "/media/admin/"+url.PathEscape(id)+"/status",
		map[string]string{"status": status, "notes": notes}, nil)
}

func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodDelete, "/media/"+url.PathEscape(id))
}

// ActiveEmergencyStatus extracts the status of the reporter's open emergency
// from a rejected verification, if the backend reported one.
func ActiveEmergencyStatus(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.Body) == 0 {
		return "", false
	}
	var body struct {
		UserActiveEmergency *struct {
			Status string `json:"status"`
		} `json:"userActiveEmergency"`
	}
	if json.Unmarshal(apiErr.Body, &body) != nil || body.UserActiveEmergency == nil {
		return "", false
	}
	return body.UserActiveEmergency.Status, true
}
