package emergency

import (
	"sort"
	"strings"
)

// All disables a dashboard filter field.
const All = "ALL"

// ResponderState is the part of a user the dashboard counts.
type ResponderState struct {
	Role     string
	Status   string
	Barangay string
}

// Summary holds the dashboard cards.
type Summary struct {
	Total               int `json:"total"`
	Active              int `json:"active"`
	InProgress          int `json:"in_progress"`
	HighPriority        int `json:"high_priority"`
	Unassigned          int `json:"unassigned"`
	Responders          int `json:"responders"`
	AvailableResponders int `json:"available_responders"`
	VehicleUnavailable  int `json:"vehicle_unavailable"`
}

// Summarize counts emergencies and responders for the dashboard.
func Summarize(records []Record, users []ResponderState) Summary {
	var s Summary
	s.Total = len(records)
	for _, r := range records {
		if r.Status() != StatusResolved {
			s.Active++
		}
		if r.Status() == StatusInProgress {
			s.InProgress++
		}
		if PriorityOf(r).IsHigh() {
			s.HighPriority++
		}
	}
	s.Unassigned = max(0, s.Active-s.InProgress)

	for _, u := range users {
		if u.Role != "RESPONDER" {
			continue
		}
		s.Responders++
		switch u.Status {
		case "AVAILABLE":
			s.AvailableResponders++
		case "VEHICLE_UNAVAILABLE":
			s.VehicleUnavailable++
		}
	}
	return s
}

// DashboardFilter narrows the dashboard list. ALL or empty disables a field.
type DashboardFilter struct {
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	Barangay string `json:"barangay,omitempty"`
}

func active(v string) bool { return v != "" && v != All }

// Apply filters and sorts newest createdAt first, returning at most limit
// records when limit is positive.
func (f DashboardFilter) Apply(records []Record, limit int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if active(f.Priority) && !strings.EqualFold(r.Str("priority"), f.Priority) {
			continue
		}
		if active(f.Status) && r.Status() != f.Status {
			continue
		}
		if active(f.Barangay) && str(r.Map("user"), "barangay") != f.Barangay {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := ParseTime(out[i]["createdAt"])
		tj, _ := ParseTime(out[j]["createdAt"])
		return ti.After(tj)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Barangays lists the distinct barangays of users, sorted.
func Barangays(users []ResponderState) []string {
	seen := make(map[string]bool)
	for _, u := range users {
		if u.Barangay != "" {
			seen[u.Barangay] = true
		}
	}
	return sortedKeys(seen)
}
