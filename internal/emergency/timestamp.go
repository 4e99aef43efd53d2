package emergency

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampFields are tried in order when resolving a record's time.
var timestampFields = []string{
	"createdAt", "created_at", "timestamp", "time", "date",
	"last_event_at", "last_event_time", "lastEventAt", "event_time",
	"updatedAt", "updated_at",
}

var fractionalSuffix = regexp.MustCompile(`\.\d+Z?$`)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ResolveTimestamp finds the best creation time for a record. ok is false
// when no candidate field holds a parseable value.
func ResolveTimestamp(r Record) (time.Time, bool) {
	for _, key := range timestampFields {
		if t, ok := ParseTime(r[key]); ok {
			return t, true
		}
	}
	if payload := r.LastEventPayload(); payload != nil {
		for _, key := range []string{"time", "timestamp"} {
			if t, ok := ParseTime(payload[key]); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseTime converts a JSON value into a time. Numbers of at most ten
// digits are Unix seconds, longer ones milliseconds. Strings are parsed as
// ISO-8601 and retried once without a fractional-second suffix.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case float64:
		return fromEpoch(t)
	case int64:
		return fromEpoch(float64(t))
	case int:
		return fromEpoch(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return parseTimeString(t)
	}
	return time.Time{}, false
}

func fromEpoch(n float64) (time.Time, bool) {
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	digits := len(strconv.FormatFloat(math.Abs(n), 'f', -1, 64))
	if digits <= 10 {
		return time.UnixMilli(int64(n * 1000)), true
	}
	return time.UnixMilli(int64(n)), true
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := parseLayouts(s); ok {
		return t, true
	}
	if trimmed := fractionalSuffix.ReplaceAllString(s, ""); trimmed != s {
		if t, ok := parseLayouts(trimmed); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLayouts(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
