package emergency

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// History event types.
const (
	EventCreated           = "CREATED"
	EventAssigned          = "ASSIGNED"
	EventAccepted          = "ACCEPTED"
	EventArrived           = "ARRIVED"
	EventDispatched        = "DISPATCHED"
	EventResponderLocation = "RESPONDER_LOCATION"
	EventResolved          = "RESOLVED"
)

// HistoryEvent is one entry of an emergency's timeline.
type HistoryEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	CreatedAt any            `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

// UnmarshalJSON accepts a payload sent as an object or as a JSON string.
// Any other JSON value becomes {"message": <raw value>}.
func (e *HistoryEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        any             `json:"id"`
		EventType string          `json:"event_type"`
		CreatedAt any             `json:"created_at"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = stringOf(raw.ID)
	e.EventType = raw.EventType
	e.CreatedAt = raw.CreatedAt
	e.Payload = nil

	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return nil
	}
	if raw.Payload[0] == '"' {
		var s string
		if err := json.Unmarshal(raw.Payload, &s); err != nil {
			return err
		}
		var m map[string]any
		if json.Unmarshal([]byte(s), &m) == nil {
			e.Payload = m
		} else {
			e.Payload = map[string]any{"message": s}
		}
		return nil
	}
	var m map[string]any
	if raw.Payload[0] == '{' {
		if err := json.Unmarshal(raw.Payload, &m); err != nil {
			return fmt.Errorf("decode event payload: %w", err)
		}
		e.Payload = m
		return nil
	}
	// Arrays, numbers and booleans are kept verbatim for display.
	e.Payload = map[string]any{"message": string(raw.Payload)}
	return nil
}

// Is compares the event type case-insensitively.
func (e HistoryEvent) Is(eventType string) bool {
	return strings.EqualFold(e.EventType, eventType)
}

// At returns created_at as a time.
func (e HistoryEvent) At() (time.Time, bool) {
	return ParseTime(e.CreatedAt)
}

// DescribeEvent summarizes a record's last event in one line.
func DescribeEvent(eventType string, payload map[string]any) string {
	switch strings.ToUpper(eventType) {
	case EventCreated:
		return "Reported by " + orDash(nestedStr(payload, "user", "name"))
	case EventAssigned:
		return "Assigned to " + orDash(str(payload, "responderName"))
	case EventArrived:
		return "Arrived — " + orDash(str(payload, "responderName"))
	case EventResponderLocation:
		if loc, ok := payload["location"].(map[string]any); ok {
			lat, _ := floatOf(loc["lat"])
			lng, _ := floatOf(loc["lng"])
			return fmt.Sprintf("Location update — %.4f, %.4f", lat, lng)
		}
		if lat := str(payload, "lat"); lat != "" {
			return fmt.Sprintf("Location update — %s,%s", lat, str(payload, "lng"))
		}
		return "Location update — -"
	case EventResolved:
		return "Resolved"
	}
	if payload == nil {
		return "{}"
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// EventDetail is the expanded rendering of a timeline entry.
type EventDetail struct {
	Summary string   `json:"summary"`
	Lines   []string `json:"lines,omitempty"`
	Link    string   `json:"link,omitempty"`
}

// DescribeDetail renders a history event's payload for the timeline. Times
// are shown in loc.
func DescribeDetail(eventType string, payload map[string]any, loc *time.Location) EventDetail {
	if payload == nil {
		return EventDetail{Summary: "-"}
	}
	at := func(keys ...string) string {
		for _, k := range keys {
			if t, ok := ParseTime(payload[k]); ok {
				return t.In(loc).Format("1/2/2006, 3:04:05 PM")
			}
		}
		return "-"
	}

	switch strings.ToUpper(eventType) {
	case EventCreated:
		who := firstStr(nestedStr(payload, "user", "name"), nestedStr(payload, "user", "id"), "Unknown")
		return EventDetail{
			Summary: "Reported by " + who,
			Lines: []string{
				firstStr(str(payload, "description"), "—"),
				"Priority: " + orDash(str(payload, "priority")),
			},
		}
	case EventAssigned:
		who := firstStr(str(payload, "responderName"), str(payload, "responderId"), str(payload, "responder"), "Unknown")
		return EventDetail{Summary: fmt.Sprintf("Responder %s assigned at %s", who, at("assignedAt"))}
	case EventResolved:
		return EventDetail{Summary: "Resolved at " + at("resolvedAt")}
	case EventResponderLocation:
		lat, lng, ok := eventCoordinates(payload)
		if !ok {
			return EventDetail{Summary: rawJSON(payload)}
		}
		d := EventDetail{
			Summary: fmt.Sprintf("Responder at %.6f,%.6f", lat, lng),
			Link:    GoogleMapsLink(lat, lng),
		}
		if t, ok := ParseTime(payload["ts"]); ok {
			d.Lines = []string{t.In(loc).Format("1/2/2006, 3:04:05 PM")}
		}
		return d
	case EventArrived:
		who := firstStr(str(payload, "responderName"), str(payload, "responderId"), "Responder")
		return EventDetail{Summary: fmt.Sprintf("Responder %s arrived at %s", who, at("arrivedAt", "ts"))}
	case EventAccepted:
		who := firstStr(str(payload, "responderName"), str(payload, "responderId"), "Responder")
		return EventDetail{Summary: fmt.Sprintf("Responder %s accepted assignment at %s", who, at("acceptedAt", "ts"))}
	case EventDispatched:
		who := firstStr(str(payload, "responderName"), str(payload, "responderId"), "Unknown")
		ids := toList(payload["vehicleIds"])
		d := EventDetail{
			Summary: fmt.Sprintf("Responder %s dispatched with %d vehicle(s)", who, len(ids)),
			Lines:   []string{"Dispatched at " + at("dispatchedAt")},
		}
		if len(ids) > 0 {
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = stringOf(id)
			}
			d.Lines = append(d.Lines, "Vehicles: "+strings.Join(parts, ", "))
		}
		return d
	}
	return EventDetail{Summary: rawJSON(payload)}
}

// GoogleMapsLink points a map search at the coordinates.
func GoogleMapsLink(lat, lng float64) string {
	return "https://www.google.com/maps/search/?api=1&query=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

func eventCoordinates(payload map[string]any) (float64, float64, bool) {
	loc, ok := payload["location"].(map[string]any)
	if !ok {
		loc = payload
	}
	coords, _ := loc["coords"].(map[string]any)
	pick := func(keys ...string) float64 {
		for _, k := range keys {
			if f, ok := floatOf(loc[k]); ok && f != 0 {
				return f
			}
		}
		if coords != nil {
			if f, ok := floatOf(coords[keys[len(keys)-1]]); ok {
				return f
			}
		}
		return 0
	}
	lat := pick("lat", "latitude")
	lng := pick("lng", "longitude")
	return lat, lng, lat != 0 && lng != 0
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return stringOf(m[key])
}

func nestedStr(m map[string]any, outer, inner string) string {
	if m == nil {
		return ""
	}
	n, _ := m[outer].(map[string]any)
	return str(n, inner)
}

func firstStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func rawJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "-"
	}
	return string(b)
}
