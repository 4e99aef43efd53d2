package sagipero

import (
	"context"
	"net/http"
)

func (c *Client) ListEvacuationCenters(ctx context.Context) ([]EvacuationCenter, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/evacuation-centers"})
	if err != nil {
		return nil, err
	}
	return decodeList[EvacuationCenter](resp.Body)
}

func (c *Client) CreateEvacuationCenter(ctx context.Context, center EvacuationCenter) (*EvacuationCenter, error) {
	var created EvacuationCenter
	if err := c.doJSON(ctx, http.MethodPost, "/evacuation-centers", center, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
