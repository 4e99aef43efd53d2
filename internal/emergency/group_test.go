package emergency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func TestFormatDateHeading(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		ok   bool
		want string
	}{
		{"unknown", time.Time{}, false, "Unknown date"},
		{"today", time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC), true, "Today"},
		{"yesterday", time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC), true, "Yesterday"},
		{"weekday", time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), true, "Sunday"},
		{"six days ago", time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC), true, "Thursday"},
		{"same year", time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), true, "January 2"},
		{"other year", time.Date(2023, 12, 25, 12, 0, 0, 0, time.UTC), true, "December 25, 2023"},
		{"future", time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC), true, "January 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateHeading(tt.at, tt.ok, fixedNow))
		})
	}
}

func TestFormatDateHeading_UsesNowLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, manila)
	// 20:00 UTC on Jan 9 is 04:00 on Jan 10 in Manila.
	at := time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today", FormatDateHeading(at, true, now))
	assert.Equal(t, "2024-01-09", DateKey(at, true))
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "unknown", DateKey(time.Time{}, false))
	assert.Equal(t, "2024-01-10", DateKey(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC), true))
}

func historyFixture() []Record {
	return []Record{
		{"id": "a1", "type": "FIRE", "status": "PENDING", "created_at": "2024-01-10T08:00:00Z"},
		{"id": "b2", "type": "MEDICAL", "status": "RESOLVED", "createdAt": float64(1704790800), "responder_name": "Ana"},
		{"id": "c3", "type": "FLOOD", "status": "IN_PROGRESS"},
		{"id": "d4", "type": "FIRE", "status": "PENDING", "created_at": "2024-01-10T12:00:00Z", "priority": "high"},
	}
}

func TestGroup_OrdersBucketsAndRows(t *testing.T) {
	buckets := Group(historyFixture(), Filter{}, fixedNow)

	require.Len(t, buckets, 3)
	assert.Equal(t, "2024-01-10", buckets[0].Key)
	assert.Equal(t, "Today", buckets[0].Label)
	assert.Equal(t, "2024-01-09", buckets[1].Key)
	assert.Equal(t, "Yesterday", buckets[1].Label)
	assert.Equal(t, "unknown", buckets[2].Key)
	assert.Equal(t, "Unknown date", buckets[2].Label)

	require.Len(t, buckets[0].Rows, 2)
	assert.Equal(t, "d4", buckets[0].Rows[0].ID)
	assert.Equal(t, "a1", buckets[0].Rows[1].ID)
	assert.Equal(t, "c3", buckets[2].Rows[0].ID)
}

func TestGroup_FilterAppliedBeforeGrouping(t *testing.T) {
	buckets := Group(historyFixture(), Filter{Type: "FIRE"}, fixedNow)

	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Rows, 2)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil, Filter{}, fixedNow))
	assert.Empty(t, Group(historyFixture(), Filter{Status: "CANCELLED"}, fixedNow))
}

func TestDateOptions(t *testing.T) {
	opts := DateOptions(historyFixture(), fixedNow)

	require.Len(t, opts, 3)
	assert.Equal(t, DateOption{Key: "2024-01-10", Label: "Today"}, opts[0])
	assert.Equal(t, DateOption{Key: "2024-01-09", Label: "Yesterday"}, opts[1])
	assert.Equal(t, DateOption{Key: "unknown", Label: "Unknown date"}, opts[2])
}
