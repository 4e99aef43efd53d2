package sagipero

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sagipero/admin-console/internal/emergency"
)

// ListEmergencies returns the current emergencies.
func (c *Client) ListEmergencies(ctx context.Context) ([]emergency.Record, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/emergencies"})
	if err != nil {
		return nil, err
	}
	return decodeList[emergency.Record](resp.Body)
}

// ListEmergencyHistory returns every emergency with its last event.
func (c *Client) ListEmergencyHistory(ctx context.Context) ([]emergency.Record, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/emergencies/history/all"})
	if err != nil {
		return nil, err
	}
	return decodeList[emergency.Record](resp.Body)
}

// GetEmergencyHistory returns the timeline of one emergency.
func (c *Client) GetEmergencyHistory(ctx context.Context, id string) ([]emergency.HistoryEvent, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/emergencies/%s/history", url.PathEscape(id)),
	})
	if err != nil {
		return nil, err
	}
	return decodeList[emergency.HistoryEvent](resp.Body)
}

// AssignEmergency assigns a responder through the dispatch endpoint.
func (c *Client) AssignEmergency(ctx context.Context, emergencyID, responderID string) error {
	return c.doJSON(ctx, http.MethodPost, "/emergencies/assign",
		map[string]string{"emergencyId": emergencyID, "responderId": responderID}, nil)
}

// AssignResponder assigns a responder from the responder management view.
func (c *Client) AssignResponder(ctx context.Context, emergencyID, responderID string) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/emergencies/%s/assign", url.PathEscape(emergencyID)),
		map[string]string{"responderId": responderID}, nil)
}

// ListFraudFlagged returns emergencies flagged as possible fraud.
func (c *Client) ListFraudFlagged(ctx context.Context) ([]emergency.Record, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/emergencies/fraud/list"})
	if err != nil {
		return nil, err
	}
	return decodeList[emergency.Record](resp.Body)
}

// UnmarkFraud clears the fraud flag of an emergency.
func (c *Client) UnmarkFraud(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodPut, fmt.Sprintf("/emergencies/%s/unmark-fraud", url.PathEscape(id)))
}
