package emergency

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PriorityKind tells labeled priorities apart from legacy numeric ones.
type PriorityKind int

const (
	KindNone PriorityKind = iota
	KindLabel
	// KindLegacy levels 1-3 are not translated to labels. Records disagree on
	// whether 1 is the highest or the lowest level, so they display as P1..P3.
	KindLegacy
)

// Labeled priorities.
const (
	High   = "HIGH"
	Medium = "MEDIUM"
	Low    = "LOW"
)

// Priority is a record's priority, normalized once when the record is read.
type Priority struct {
	Kind  PriorityKind
	Label string // HIGH, MEDIUM or LOW when Kind is KindLabel
	Level int    // 1..3 when Kind is KindLegacy
	Raw   string // the value as received
}

// ParsePriority normalizes a raw priority value.
func ParsePriority(v any) Priority {
	raw := strings.TrimSpace(stringOf(v))
	if raw == "" {
		return Priority{}
	}
	switch strings.ToUpper(raw) {
	case High, Medium, Low:
		return Priority{Kind: KindLabel, Label: strings.ToUpper(raw), Raw: raw}
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 3 {
		return Priority{Kind: KindLegacy, Level: n, Raw: raw}
	}
	return Priority{Raw: raw}
}

// IsZero reports whether no priority value was present.
func (p Priority) IsZero() bool { return p.Raw == "" }

// String is the display form: the label, P1..P3, the raw value or "-".
func (p Priority) String() string {
	switch p.Kind {
	case KindLabel:
		return p.Label
	case KindLegacy:
		return fmt.Sprintf("P%d", p.Level)
	}
	if p.Raw != "" {
		return p.Raw
	}
	return "-"
}

// IsHigh reports whether the priority is HIGH, or the legacy value 1 the
// dashboard has always counted as high.
func (p Priority) IsHigh() bool {
	return (p.Kind == KindLabel && p.Label == High) || (p.Kind == KindLegacy && p.Level == 1)
}

// Matches compares the raw value case-insensitively.
func (p Priority) Matches(filter string) bool {
	return strings.EqualFold(p.Raw, strings.TrimSpace(filter))
}

// PriorityOf returns the record's explicit priority.
func PriorityOf(r Record) Priority {
	return ParsePriority(r["priority"])
}

// InferPriority returns the explicit priority or, when absent, HIGH if the
// reporter declared special circumstances or medical conditions. The result
// is for display only.
func InferPriority(r Record) Priority {
	if p := PriorityOf(r); !p.IsZero() {
		return p
	}
	if HasSpecialNeeds(r.Reporter()) {
		return Priority{Kind: KindLabel, Label: High, Raw: High}
	}
	return Priority{}
}

// HasSpecialNeeds reports whether a reporter snapshot lists any special
// circumstance or medical condition.
func HasSpecialNeeds(user map[string]any) bool {
	if user == nil {
		return false
	}
	special := firstPresent(user, "specialCircumstances", "specialCircumstance", "special")
	medical := firstPresent(user, "medicalConditions", "medical")
	return len(toList(special)) > 0 || len(toList(medical)) > 0
}

// firstPresent returns the first truthy value. An empty list counts as
// present, so a later key is not consulted.
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
		case bool:
			if !v {
				continue
			}
		case float64:
			if v == 0 {
				continue
			}
		}
		return m[k]
	}
	return nil
}

// UniqueTypes lists distinct non-empty types in first-seen order.
func UniqueTypes(records []Record) []string {
	return unique(records, func(r Record) string { return r.Type() })
}

// UniquePriorities lists distinct non-empty raw priorities in first-seen order.
func UniquePriorities(records []Record) []string {
	return unique(records, func(r Record) string { return PriorityOf(r).Raw })
}

func unique(records []Record, field func(Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
