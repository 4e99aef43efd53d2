package sagipero

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// InventoryQuery is passed to the backend as query parameters.
type InventoryQuery struct {
	ResponderID string
	Available   *bool
}

func (c *Client) ListInventory(ctx context.Context, q InventoryQuery) ([]InventoryItem, error) {
	params := url.Values{}
	if q.ResponderID != "" {
		params.Set("responderId", q.ResponderID)
	}
	if q.Available != nil {
		params.Set("available", strconv.FormatBool(*q.Available))
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/inventory", Query: params})
	if err != nil {
		return nil, err
	}
	return decodeList[InventoryItem](resp.Body)
}

func (c *Client) CreateInventoryItem(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	item.ID = ""
	var created InventoryItem
	if err := c.doJSON(ctx, http.MethodPost, "/inventory", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateInventoryItem(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	if item.ID == "" {
		return nil, ErrMissingID
	}
	var updated InventoryItem
	if err := c.doJSON(ctx, http.MethodPut, "/inventory/"+url.PathEscape(item.ID), item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetInventoryAvailable changes only the availability of an item.
func (c *Client) SetInventoryAvailable(ctx context.Context, id string, available bool) error {
	return c.doJSON(ctx, http.MethodPut, "/inventory/"+url.PathEscape(id),
		map[string]bool{"available": available}, nil)
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodDelete, "/inventory/"+url.PathEscape(id))
}

// InventoryFilter narrows the inventory list. Availability is "all",
// "available" or "unavailable".
type InventoryFilter struct {
	ResponderID  string
	Availability string
	Unit         string
	Search       string
}

// Query returns the server-side part of the filter.
func (f InventoryFilter) Query() InventoryQuery {
	q := InventoryQuery{ResponderID: f.ResponderID}
	switch f.Availability {
	case "available":
		yes := true
		q.Available = &yes
	case "unavailable":
		no := false
		q.Available = &no
	}
	return q
}

func (f InventoryFilter) Apply(items []InventoryItem, responders []User) []InventoryItem {
	names := responderNames(responders)
	q := strings.ToLower(f.Search)

	out := []InventoryItem{}
	for _, it := range items {
		if f.ResponderID != "" && it.ResponderID != f.ResponderID {
			continue
		}
		if f.Availability == "available" && !it.Available {
			continue
		}
		if f.Availability == "unavailable" && it.Available {
			continue
		}
		if f.Unit != "" && !strings.EqualFold(it.Unit, f.Unit) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.SKU), q) &&
			!strings.Contains(strings.ToLower(it.Notes), q) &&
			!strings.Contains(names[it.ResponderID], q) {
			continue
		}
		out = append(out, it)
	}
	return out
}
