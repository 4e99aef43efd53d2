// Package mapview turns emergencies and evacuation centers into map markers
// for the dashboard's Leaflet page.
package mapview

import (
	"fmt"
	"html"

	"github.com/sagipero/admin-console/internal/emergency"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// Default view of the operations map.
var (
	DefaultCenter = [2]float64{14.6, 121.0}
	DefaultZoom   = 11
)

// Marker colors.
const (
	ColorEvacCenter = "#059669"
	ColorSpecial    = "#7c3aed"
	ColorHigh       = "#ef4444"
	ColorMedium     = "#f59e0b"
	ColorDefault    = "#3b82f6"
)

// Marker kinds.
const (
	KindEvacCenter = "evac_center"
	KindEmergency  = "emergency"
)

// Marker is one map pin. Emergency markers carry AssignID and AssignType;
// the console renders an Assign button in their popup that loads
// assign-options for AssignType and posts the choice to AssignID.
type Marker struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Color      string  `json:"color"`
	Size       int     `json:"size"`
	Popup      string  `json:"popup"`
	AssignID   string  `json:"assignId,omitempty"`
	AssignType string  `json:"assignType,omitempty"`
}

// EvacCenterMarkers returns one marker per center with a usable location.
func EvacCenterMarkers(centers []sagipero.EvacuationCenter) []Marker {
	out := make([]Marker, 0, len(centers))
	for _, c := range centers {
		if c.Location == nil || c.Location.Lat == 0 {
			continue
		}
		out = append(out, Marker{
			ID:    c.ID,
			Kind:  KindEvacCenter,
			Lat:   c.Location.Lat,
			Lng:   c.Location.Lng,
			Color: ColorEvacCenter,
			Size:  16,
			Popup: fmt.Sprintf("<b>%s</b><br/>%.4f, %.4f", html.EscapeString(c.Name), c.Location.Lat, c.Location.Lng),
		})
	}
	return out
}

// EmergencyMarkers returns one marker per emergency with a usable location.
// Reporters with special circumstances or medical conditions get the larger
// purple marker regardless of priority.
func EmergencyMarkers(records []emergency.Record) []Marker {
	out := make([]Marker, 0, len(records))
	for _, r := range records {
		lat, lng, ok := r.Location()
		if !ok {
			continue
		}
		color, size := emergencyStyle(r)
		out = append(out, Marker{
			ID:         r.ID(),
			Kind:       KindEmergency,
			Lat:        lat,
			Lng:        lng,
			Color:      color,
			Size:       size,
			Popup:      fmt.Sprintf("<b>%s</b><br/>%s", html.EscapeString(r.Type()), html.EscapeString(r.Description())),
			AssignID:   r.ID(),
			AssignType: r.Type(),
		})
	}
	return out
}

func emergencyStyle(r emergency.Record) (string, int) {
	if emergency.HasSpecialNeeds(r.Reporter()) {
		return ColorSpecial, 20
	}
	p := emergency.PriorityOf(r)
	if p.Kind == emergency.KindLabel {
		switch p.Label {
		case emergency.High:
			return ColorHigh, 14
		case emergency.Medium:
			return ColorMedium, 14
		}
	}
	return ColorDefault, 14
}

// Markers combines center and emergency markers, centers first.
func Markers(records []emergency.Record, centers []sagipero.EvacuationCenter) []Marker {
	return append(EvacCenterMarkers(centers), EmergencyMarkers(records)...)
}

// NewEvacCenter builds the center created by clicking the map. The backend
// requires an address and capacity, so placeholders are filled in.
func NewEvacCenter(lat, lng float64, name string) sagipero.EvacuationCenter {
	if name == "" {
		name = "Evac Center"
	}
	return sagipero.EvacuationCenter{
		Name:     name,
		Address:  fmt.Sprintf("Lat:%.5f Lng:%.5f", lat, lng),
		Capacity: 20,
		Location: &sagipero.Location{Lat: lat, Lng: lng},
	}
}
