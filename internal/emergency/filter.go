package emergency

import "strings"

// StatusActive is a pseudo-status matching every record that is not yet
// resolved or cancelled.
const StatusActive = "ACTIVE"

// Filter narrows the history list. Empty fields match everything; set
// fields are combined with AND.
type Filter struct {
	Date     string `json:"date,omitempty"`
	Status   string `json:"status,omitempty"`
	Type     string `json:"type,omitempty"`
	Priority string `json:"priority,omitempty"`
	Search   string `json:"search,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Matches applies date, status, type, priority and search in that order.
func (f Filter) Matches(r Record) bool {
	if f.Date != "" {
		t, ok := ResolveTimestamp(r)
		if DateKey(t, ok) != f.Date {
			return false
		}
	}
	if f.Status != "" && !matchStatus(f.Status, r.Status()) {
		return false
	}
	if f.Type != "" && f.Type != r.Type() {
		return false
	}
	if f.Priority != "" && !PriorityOf(r).Matches(f.Priority) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.ID()), q) &&
			!strings.Contains(strings.ToLower(r.ResponderName()), q) &&
			!strings.Contains(strings.ToLower(r.Type()), q) {
			return false
		}
	}
	return true
}

// Apply returns the records that match, preserving order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func matchStatus(filter, status string) bool {
	if filter == StatusActive {
		return status != StatusResolved && status != StatusCancelled
	}
	return filter == status
}
