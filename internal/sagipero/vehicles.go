package sagipero

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// VehicleTypes are the models offered when registering a vehicle.
var VehicleTypes = []string{
	"Ambulance",
	"Fire Truck",
	"Rescue Boat",
	"Utility Vehicle",
	"Motorcycle",
	"Pickup Truck",
	"Van",
	"Other",
}

func (c *Client) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/vehicles"})
	if err != nil {
		return nil, err
	}
	return decodeList[Vehicle](resp.Body)
}

func (c *Client) CreateVehicle(ctx context.Context, v Vehicle) (*Vehicle, error) {
	v.ID = ""
	var created Vehicle
	if err := c.doJSON(ctx, http.MethodPost, "/vehicles", v, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateVehicle(ctx context.Context, v Vehicle) (*Vehicle, error) {
	if v.ID == "" {
		return nil, ErrMissingID
	}
	var updated Vehicle
	if err := c.doJSON(ctx, http.MethodPut, "/vehicles/"+url.PathEscape(v.ID), v, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetVehicleActive flips only the active flag of a vehicle.
func (c *Client) SetVehicleActive(ctx context.Context, id string, active bool) error {
	return c.doJSON(ctx, http.MethodPut, "/vehicles/"+url.PathEscape(id),
		map[string]bool{"active": active}, nil)
}

func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodDelete, "/vehicles/"+url.PathEscape(id))
}

// AvailableVehicles returns the active vehicles of one responder.
func AvailableVehicles(vehicles []Vehicle, responderID string) []Vehicle {
	out := []Vehicle{}
	for _, v := range vehicles {
		if v.ResponderID == responderID && v.Active {
			out = append(out, v)
		}
	}
	return out
}

// VehicleFilter narrows the fleet list. Status is "all", "active" or "inactive".
type VehicleFilter struct {
	ResponderID string
	Model       string
	Status      string
	Search      string
}

// Apply filters vehicles; responder names are looked up for search.
func (f VehicleFilter) Apply(vehicles []Vehicle, responders []User) []Vehicle {
	names := responderNames(responders)
	q := strings.ToLower(f.Search)

	out := []Vehicle{}
	for _, v := range vehicles {
		if f.ResponderID != "" && v.ResponderID != f.ResponderID {
			continue
		}
		if f.Model != "" && !strings.EqualFold(v.Model, f.Model) {
			continue
		}
		if f.Status == "active" && !v.Active {
			continue
		}
		if f.Status == "inactive" && v.Active {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(v.PlateNumber), q) &&
			!strings.Contains(strings.ToLower(v.Color), q) &&
			!strings.Contains(strings.ToLower(v.Model), q) &&
			!strings.Contains(names[v.ResponderID], q) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FleetStats is the header line of the fleet view.
type FleetStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Available int `json:"available"`
}

// CountFleet counts all, active and active unassigned vehicles.
func CountFleet(vehicles []Vehicle) FleetStats {
	var s FleetStats
	for _, v := range vehicles {
		s.Total++
		if v.Active {
			s.Active++
			if v.ResponderID == "" {
				s.Available++
			}
		}
	}
	return s
}

func responderNames(responders []User) map[string]string {
	names := make(map[string]string, len(responders))
	for _, r := range responders {
		names[r.ID] = strings.ToLower(r.Name)
	}
	return names
}
