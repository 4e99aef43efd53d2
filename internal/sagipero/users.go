package sagipero

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ListUsers returns users, optionally restricted to a role.
func (c *Client) ListUsers(ctx context.Context, role string) ([]User, error) {
	var q url.Values
	if role != "" {
		q = url.Values{"role": {role}}
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users", Query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[User](resp.Body)
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, u User) (*User, error) {
	var created User
	if err := c.doJSON(ctx, http.MethodPost, "/users", u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser replaces a user record.
func (c *Client) UpdateUser(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		return nil, ErrMissingID
	}
	var updated User
	if err := c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(u.ID), u, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodDelete, "/users/"+url.PathEscape(id))
}

// SetResponderTypes replaces the emergency types a responder handles.
func (c *Client) SetResponderTypes(ctx context.Context, id string, types []string) error {
	if types == nil {
		types = []string{}
	}
	return c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id),
		map[string]any{"responderTypes": types}, nil)
}

// SetResponderStatus changes a responder's availability.
func (c *Client) SetResponderStatus(ctx context.Context, id, status string) error {
	return c.doJSON(ctx, http.MethodPost, "/users/update-responder-status",
		map[string]string{"userId": id, "status": status}, nil)
}

// ToggledResponderStatus is the status a toggle moves a responder to.
func ToggledResponderStatus(current string) string {
	if current == ResponderAvailable {
		return ResponderOnDuty
	}
	return ResponderAvailable
}

// ResponderTypeStats counts qualified and available responders per type.
type ResponderTypeStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

// CountResponderTypes tallies responders per known responder type.
func CountResponderTypes(responders []User) map[string]ResponderTypeStats {
	stats := make(map[string]ResponderTypeStats, len(ResponderTypes))
	for _, t := range ResponderTypes {
		var s ResponderTypeStats
		for _, r := range responders {
			if !r.HasResponderType(t) {
				continue
			}
			s.Total++
			if r.ResponderStatus == ResponderAvailable {
				s.Available++
			}
		}
		stats[t] = s
	}
	return stats
}

// RespondersFor returns responders qualified for an emergency type. An
// empty type returns every responder.
func RespondersFor(responders []User, emergencyType string) []User {
	if emergencyType == "" {
		return responders
	}
	out := make([]User, 0, len(responders))
	for _, r := range responders {
		if r.HasResponderType(emergencyType) {
			out = append(out, r)
		}
	}
	return out
}

// ErrMissingID is returned when a mutation is attempted without an id.
var ErrMissingID = errors.New("missing required ID")
