package mapview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagipero/admin-console/internal/emergency"
	"github.com/sagipero/admin-console/internal/sagipero"
)

func TestEmergencyMarkers(t *testing.T) {
	records := []emergency.Record{
		{"id": "e1", "type": "FIRE", "priority": "high", "location": map[string]any{"lat": 14.5, "lng": 121.0}},
		{"id": "e2", "type": "FLOOD", "priority": "MEDIUM", "location": map[string]any{"lat": 14.6, "lng": 121.1}},
		{
			"id":          "e3",
			"type":        "MEDICAL",
			"priority":    "low",
			"description": "<b>x</b>",
			"location":    map[string]any{"lat": 14.7, "lng": 121.2},
			"user":        map[string]any{"medicalConditions": []any{"diabetes"}},
		},
		{"id": "e4", "type": "POLICE", "priority": float64(1), "location": map[string]any{"lat": 14.8, "lng": 121.3}},
		{"id": "e5", "type": "FIRE", "location": map[string]any{"lat": 0, "lng": 121.3}},
		{"id": "e6", "type": "FIRE"},
	}

	markers := EmergencyMarkers(records)
	require.Len(t, markers, 4)

	assert.Equal(t, ColorHigh, markers[0].Color)
	assert.Equal(t, 14, markers[0].Size)
	assert.Equal(t, "e1", markers[0].AssignID)
	assert.Equal(t, "FIRE", markers[0].AssignType)
	assert.Equal(t, ColorMedium, markers[1].Color)
	assert.Equal(t, ColorSpecial, markers[2].Color)
	assert.Equal(t, 20, markers[2].Size)
	assert.Equal(t, "<b>MEDICAL</b><br/>&lt;b&gt;x&lt;/b&gt;", markers[2].Popup)
	assert.Equal(t, ColorDefault, markers[3].Color)
}

func TestEvacCenterMarkers(t *testing.T) {
	centers := []sagipero.EvacuationCenter{
		{ID: "c1", Name: "Gym", Location: &sagipero.Location{Lat: 14.83412, Lng: 120.73288}},
		{ID: "c2", Name: "No location"},
		{ID: "c3", Name: "Zero", Location: &sagipero.Location{Lat: 0, Lng: 120}},
	}

	markers := EvacCenterMarkers(centers)
	require.Len(t, markers, 1)
	assert.Equal(t, Marker{
		ID:    "c1",
		Kind:  KindEvacCenter,
		Lat:   14.83412,
		Lng:   120.73288,
		Color: ColorEvacCenter,
		Size:  16,
		Popup: "<b>Gym</b><br/>14.8341, 120.7329",
	}, markers[0])
}

func TestNewEvacCenter(t *testing.T) {
	c := NewEvacCenter(14.123456, 120.987654, "")
	assert.Equal(t, "Evac Center", c.Name)
	assert.Equal(t, "Lat:14.12346 Lng:120.98765", c.Address)
	assert.Equal(t, 20, c.Capacity)
	require.NotNil(t, c.Location)
	assert.Equal(t, 14.123456, c.Location.Lat)

	assert.Equal(t, "School", NewEvacCenter(1, 2, "School").Name)
}

func TestCollection(t *testing.T) {
	fc := Collection([]Marker{{ID: "e1", Kind: KindEmergency, Lat: 14.5, Lng: 121, Color: ColorHigh, Size: 14, AssignID: "e1"}})

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded["type"])
	features := decoded["features"].([]any)
	require.Len(t, features, 1)
	f := features[0].(map[string]any)
	assert.Equal(t, []any{121.0, 14.5}, f["geometry"].(map[string]any)["coordinates"])
	assert.Equal(t, "e1", f["properties"].(map[string]any)["assignId"])
	assert.Equal(t, []any{14.6, 121.0}, decoded["center"])
}

func TestShares(t *testing.T) {
	older := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	users := []sagipero.User{
		{ID: "u1", Name: "Ana", Barangay: "Barangay 1", Location: &sagipero.UserLocation{Latitude: 14.8, Longitude: 120.7, UpdatedAt: &older}},
		{ID: "u2", Email: "ben@example.com", Location: &sagipero.UserLocation{Latitude: 14.9, Longitude: 120.8, UpdatedAt: &newer}},
		{ID: "u3", Name: "No share"},
		{ID: "u4", Name: "Zero", Location: &sagipero.UserLocation{Latitude: 14.9}},
	}

	shares := Shares(users)
	require.Len(t, shares, 2)
	assert.Equal(t, "u2", shares[0].ID)
	assert.Equal(t, "Unknown", shares[0].UserName)
	assert.Equal(t, "Not specified", shares[0].Address)
	assert.Equal(t, "Not provided", shares[0].Phone)
	assert.Equal(t, "https://www.google.com/maps?q=14.9,120.8", shares[0].MapURL)

	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	assert.Len(t, ShareFilter{Status: "recent"}.Apply(shares, now), 1)
	assert.Len(t, ShareFilter{Status: "old"}.Apply(shares, now), 1)
	got := ShareFilter{Search: "barangay 1"}.Apply(shares, now)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)

	assert.Equal(t, ShareStats{Total: 2, Recent: 1, Barangays: 1}, CountShares(shares, now))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5 min ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{25 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestCollection_EmergencyFeaturesCarryAssignTarget(t *testing.T) {
	records := []emergency.Record{
		{"id": "e1", "type": "FLOOD", "priority": "high", "location": map[string]any{"lat": 14.5, "lng": 121.0}},
	}
	centers := []sagipero.EvacuationCenter{
		{ID: "c1", Name: "Gym", Location: &sagipero.Location{Lat: 14.8, Lng: 120.7}},
	}

	data, err := json.Marshal(Collection(Markers(records, centers)))
	require.NoError(t, err)

	var decoded struct {
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Features, 2)

	center := decoded.Features[0]
	assert.Equal(t, "c1", center.ID)
	assert.NotContains(t, center.Properties, "assignId")

	em := decoded.Features[1]
	assert.Equal(t, "e1", em.Properties["assignId"])
	assert.Equal(t, "FLOOD", em.Properties["assignType"])
}
