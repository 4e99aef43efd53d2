package mapview

// FeatureCollection is a GeoJSON feature collection of point markers.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Center   []float64 `json:"center,omitempty"`
	Zoom     int       `json:"zoom,omitempty"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Collection converts markers to GeoJSON. Coordinates are [lng, lat].
func Collection(markers []Marker) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(markers)),
		Center:   []float64{DefaultCenter[0], DefaultCenter[1]},
		Zoom:     DefaultZoom,
	}
	for _, m := range markers {
		props := map[string]any{
			"kind":  m.Kind,
			"color": m.Color,
			"size":  m.Size,
			"popup": m.Popup,
		}
		if m.AssignID != "" {
			props["assignId"] = m.AssignID
			props["assignType"] = m.AssignType
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         m.ID,
			Geometry:   Geometry{Type: "Point", Coordinates: []float64{m.Lng, m.Lat}},
			Properties: props,
		})
	}
	return fc
}
