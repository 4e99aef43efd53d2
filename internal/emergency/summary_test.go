package emergency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	records := []Record{
		{"status": "PENDING", "priority": "high"},
		{"status": "IN_PROGRESS", "priority": float64(1)},
		{"status": "RESOLVED", "priority": "low"},
		{"status": "ARRIVED"},
	}
	users := []ResponderState{
		{Role: "RESPONDER", Status: "AVAILABLE"},
		{Role: "RESPONDER", Status: "VEHICLE_UNAVAILABLE"},
		{Role: "RESPONDER", Status: "ON_DUTY"},
		{Role: "RESIDENT", Status: "AVAILABLE"},
	}

	s := Summarize(records, users)

	assert.Equal(t, Summary{
		Total:               4,
		Active:              3,
		InProgress:          1,
		HighPriority:        2,
		Unassigned:          2,
		Responders:          3,
		AvailableResponders: 1,
		VehicleUnavailable:  1,
	}, s)
}

func TestDashboardFilter_Apply(t *testing.T) {
	records := []Record{
		{"id": "1", "priority": "HIGH", "status": "PENDING", "createdAt": "2024-01-01T00:00:00Z", "user": map[string]any{"barangay": "Barangay 1"}},
		{"id": "2", "priority": "high", "status": "PENDING", "createdAt": "2024-01-03T00:00:00Z", "user": map[string]any{"barangay": "Barangay 2"}},
		{"id": "3", "priority": "low", "status": "RESOLVED", "createdAt": "2024-01-02T00:00:00Z"},
	}

	assert.Equal(t, []string{"2", "3", "1"}, ids(DashboardFilter{Priority: All}.Apply(records, 0)))
	assert.Equal(t, []string{"2", "1"}, ids(DashboardFilter{Priority: "High"}.Apply(records, 0)))
	assert.Equal(t, []string{"1"}, ids(DashboardFilter{Barangay: "Barangay 1"}.Apply(records, 0)))
	assert.Equal(t, []string{"3"}, ids(DashboardFilter{Status: "RESOLVED"}.Apply(records, 0)))
	assert.Len(t, DashboardFilter{}.Apply(records, 2), 2)
}

func TestBarangays(t *testing.T) {
	got := Barangays([]ResponderState{{Barangay: "b"}, {Barangay: "a"}, {Barangay: ""}, {Barangay: "b"}})
	assert.Equal(t, []string{"a", "b"}, got)
}
