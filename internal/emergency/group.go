package emergency

import (
	"sort"
	"time"
)

// Bucket is one date heading and its rows, newest first.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Rows  []Row  `json:"rows"`
}

// DateOption is an entry of the date filter dropdown.
type DateOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type dated struct {
	record Record
	at     time.Time
	ok     bool
}

// Group filters records and buckets them by UTC date key. Buckets are
// ordered newest date first with the unknown bucket last.
func Group(records []Record, f Filter, now time.Time) []Bucket {
	byKey := make(map[string][]dated)
	for _, r := range records {
		if !f.Matches(r) {
			continue
		}
		t, ok := ResolveTimestamp(r)
		key := DateKey(t, ok)
		byKey[key] = append(byKey[key], dated{record: r, at: t, ok: ok})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sortDateKeys(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		items := byKey[key]
		sort.SliceStable(items, func(i, j int) bool {
			return epochMillis(items[i]) > epochMillis(items[j])
		})

		var rep dated
		for _, it := range items {
			if it.ok {
				rep = it
				break
			}
		}

		rows := make([]Row, len(items))
		for i, it := range items {
			rows[i] = buildRow(it.record, it.at, it.ok, now.Location())
		}
		buckets = append(buckets, Bucket{
			Key:   key,
			Label: FormatDateHeading(rep.at, rep.ok, now),
			Rows:  rows,
		})
	}
	return buckets
}

// DateOptions lists each date key present in records with a heading label,
// newest first and the unknown key last.
func DateOptions(records []Record, now time.Time) []DateOption {
	first := make(map[string]dated)
	for _, r := range records {
		t, ok := ResolveTimestamp(r)
		key := DateKey(t, ok)
		if _, seen := first[key]; !seen {
			first[key] = dated{record: r, at: t, ok: ok}
		}
	}

	keys := make([]string, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	sortDateKeys(keys)

	opts := make([]DateOption, len(keys))
	for i, k := range keys {
		d := first[k]
		opts[i] = DateOption{Key: k, Label: FormatDateHeading(d.at, d.ok, now)}
	}
	return opts
}

func sortDateKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == UnknownDateKey {
			return false
		}
		if keys[j] == UnknownDateKey {
			return true
		}
		return keys[i] > keys[j]
	})
}

func epochMillis(d dated) int64 {
	if !d.ok {
		return 0
	}
	return d.at.UnixMilli()
}
