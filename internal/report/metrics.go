// Package report derives dashboard metrics from report summaries and exports
// them.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/sagipero/admin-console/internal/emergency"
)

const topN = 6

// Count is one entry of a ranked breakdown.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Metrics summarizes the emergencies in a report. When the report is not a
// list of emergencies only Raw is set.
type Metrics struct {
	Total        int              `json:"total"`
	ByPriority   map[string]int   `json:"byPriority"`
	ByStatus     map[string]int   `json:"byStatus"`
	TopBarangays []Count          `json:"topBarangays"`
	TopReporters []Count          `json:"topReporters"`
	Timeline     map[string]int   `json:"timeline"`
	Rows         []map[string]any `json:"rows"`

	Raw json.RawMessage `json:"raw,omitempty"`
}

// IsList reports whether the metrics were computed from a list.
func (m *Metrics) IsList() bool { return m.Raw == nil }

// ComputeMetrics reads a report body. The list is taken from "emergencies",
// "data" or "items", or the body itself when it is an array.
func ComputeMetrics(body []byte) (*Metrics, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty report")
	}

	var list []map[string]any
	if body[0] == '[' {
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	} else {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		found := false
		for _, key := range []string{"emergencies", "data", "items"} {
			raw, ok := env[key]
			if !ok || string(raw) == "null" {
				continue
			}
			found = true
			if json.Unmarshal(raw, &list) != nil {
				return &Metrics{Raw: json.RawMessage(body)}, nil
			}
			break
		}
		if !found {
			return &Metrics{Raw: json.RawMessage(body)}, nil
		}
	}
	return metricsOf(list), nil
}

func metricsOf(list []map[string]any) *Metrics {
	m := &Metrics{
		Total:      len(list),
		ByPriority: map[string]int{"1": 0, "2": 0, "3": 0},
		ByStatus:   map[string]int{},
		Timeline:   map[string]int{},
		Rows:       list,
	}
	barangays := newTally()
	reporters := newTally()

	for _, e := range list {
		m.ByPriority[priorityKey(e)]++
		m.ByStatus[firstTruthy(e, "unknown", "status", "state")]++

		b := firstTruthy(e, "", "barangay")
		if b == "" {
			b = nestedString(e, "location", "barangay")
		}
		if b == "" {
			b = "Unknown"
		}
		barangays.add(b)

		r := firstTruthy(e, "", "reporter_name")
		if r == "" {
			r = nestedString(e, "user", "name")
		}
		if r == "" {
			r = firstTruthy(e, "Unknown", "reporter")
		}
		reporters.add(r)

		m.Timeline[dayKey(e)]++
	}

	m.TopBarangays = barangays.top(topN)
	m.TopReporters = reporters.top(topN)
	return m
}

// priorityKey uses the first of priority, severity or priority_level that is
// present at all, defaulting to "3".
func priorityKey(e map[string]any) string {
	for _, k := range []string{"priority", "severity", "priority_level"} {
		if v, ok := e[k]; ok && v != nil {
			return text(v)
		}
	}
	return "3"
}

func dayKey(e map[string]any) string {
	for _, k := range []string{"createdAt", "created_at", "date"} {
		v, ok := e[k]
		if !ok || text(v) == "" {
			continue
		}
		t, ok := emergency.ParseTime(v)
		if !ok {
			return "unknown"
		}
		return t.UTC().Format("2006-01-02")
	}
	return "unknown"
}

func firstTruthy(e map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := e[k].(string); ok && s != "" {
			return s
		}
	}
	return def
}

func nestedString(e map[string]any, outer, inner string) string {
	m, ok := e[outer].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[inner].(string)
	return s
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// tally counts names and remembers first-seen order so ties rank stably.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally { return &tally{counts: map[string]int{}} }

func (t *tally) add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *tally) top(n int) []Count {
	out := make([]Count, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Count{Name: name, Count: t.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
