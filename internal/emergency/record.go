// Package emergency turns raw emergency records and their history into the
// rows, buckets and summaries the console displays. Nothing here talks to
// the network; the current time is always passed in.
package emergency

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one emergency as returned by the backend. Field names vary
// between endpoints, so the raw object is kept and read through accessors.
type Record map[string]any

// Str returns the field as a string. Numbers are formatted without exponent.
func (r Record) Str(key string) string {
	return stringOf(r[key])
}

// Map returns a nested object field, or nil.
func (r Record) Map(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

func (r Record) ID() string            { return r.Str("id") }
func (r Record) Type() string          { return r.Str("type") }
func (r Record) Status() string        { return r.Str("status") }
func (r Record) Description() string   { return r.Str("description") }
func (r Record) ResponderName() string { return r.Str("responder_name") }
func (r Record) LastEventType() string { return r.Str("last_event_type") }

// ShortID is the first eight characters of the id.
func (r Record) ShortID() string {
	id := r.ID()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Payload returns payload, falling back to last_event_payload.
func (r Record) Payload() map[string]any {
	if p := r.Map("payload"); p != nil {
		return p
	}
	return r.LastEventPayload()
}

// LastEventPayload returns last_event_payload, decoding it when the backend
// sent it as a JSON string.
func (r Record) LastEventPayload() map[string]any {
	switch v := r["last_event_payload"].(type) {
	case map[string]any:
		return v
	case string:
		var m map[string]any
		if json.Unmarshal([]byte(v), &m) == nil {
			return m
		}
	}
	return nil
}

// Reporter returns the reporter snapshot: payload.user, user, then
// payload.reporter.
func (r Record) Reporter() map[string]any {
	payload := r.Payload()
	if u, ok := payload["user"].(map[string]any); ok {
		return u
	}
	if u := r.Map("user"); u != nil {
		return u
	}
	if u, ok := payload["reporter"].(map[string]any); ok {
		return u
	}
	return nil
}

// Location returns the record's coordinates. ok is false when the latitude
// is missing or zero.
func (r Record) Location() (lat, lng float64, ok bool) {
	loc := r.Map("location")
	if loc == nil {
		return 0, 0, false
	}
	lat, latOK := floatOf(loc["lat"])
	lng, _ = floatOf(loc["lng"])
	if !latOK || lat == 0 {
		return 0, 0, false
	}
	return lat, lng, true
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// toList normalizes a scalar or array value into a list of non-empty items.
func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []any{t}
	case bool:
		if !t {
			return nil
		}
		return []any{t}
	default:
		return []any{t}
	}
}
