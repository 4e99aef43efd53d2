package emergency

import (
	"fmt"
	"math"
	"time"
)

// ResponseTimes summarizes how quickly an emergency was handled. Durations
// are whole seconds; nil means one of the endpoints is missing.
type ResponseTimes struct {
	RequestedAt *time.Time `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	ArrivedAt   *time.Time `json:"arrived_at"`

	ToAccept *int `json:"to_accept_seconds"`
	ToArrive *int `json:"accept_to_arrive_seconds"`
	Total    *int `json:"total_seconds"`
}

// ComputeResponseTimes finds the first CREATED, ACCEPTED and ARRIVED events
// and measures the gaps between them.
func ComputeResponseTimes(events []HistoryEvent) ResponseTimes {
	created := eventTime(events, EventCreated, "createdAt")
	accepted := eventTime(events, EventAccepted, "acceptedAt")
	arrived := eventTime(events, EventArrived, "arrivedAt")

	return ResponseTimes{
		RequestedAt: created,
		AcceptedAt:  accepted,
		ArrivedAt:   arrived,
		ToAccept:    secondsBetween(created, accepted),
		ToArrive:    secondsBetween(accepted, arrived),
		Total:       secondsBetween(created, arrived),
	}
}

// FormatSeconds renders a duration as "Xm Ys", or "-" when unknown.
func FormatSeconds(secs *int) string {
	if secs == nil {
		return "-"
	}
	return fmt.Sprintf("%dm %ds", *secs/60, *secs%60)
}

func eventTime(events []HistoryEvent, eventType, payloadKey string) *time.Time {
	for _, e := range events {
		if !e.Is(eventType) {
			continue
		}
		if t, ok := e.At(); ok {
			return &t
		}
		for _, k := range []string{payloadKey, "ts", "time"} {
			if t, ok := ParseTime(e.Payload[k]); ok {
				return &t
			}
		}
		return nil
	}
	return nil
}

func secondsBetween(a, b *time.Time) *int {
	if a == nil || b == nil {
		return nil
	}
	secs := int(math.Round(b.Sub(*a).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return &secs
}
