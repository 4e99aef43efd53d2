package emergency

import "time"

// Row is a record annotated for the history table.
type Row struct {
	ID            string     `json:"id"`
	ShortID       string     `json:"short_id"`
	Type          string     `json:"type"`
	Responder     string     `json:"responder"`
	Status        string     `json:"status"`
	StatusPill    StatusPill `json:"status_pill"`
	Priority      string     `json:"priority"`
	PriorityTone  string     `json:"priority_tone"`
	LastEventType string     `json:"last_event_type"`
	LastEvent     string     `json:"last_event"`
	Time          string     `json:"time"`
	At            *time.Time `json:"at,omitempty"`
}

// BuildRows annotates records in their given order.
func BuildRows(records []Record, loc *time.Location) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		t, ok := ResolveTimestamp(r)
		rows[i] = buildRow(r, t, ok, loc)
	}
	return rows
}

func buildRow(r Record, t time.Time, ok bool, loc *time.Location) Row {
	p := InferPriority(r)
	row := Row{
		ID:            r.ID(),
		ShortID:       r.ShortID(),
		Type:          orDash(r.Type()),
		Responder:     orDash(r.ResponderName()),
		Status:        r.Status(),
		StatusPill:    PillForStatus(r.Status()),
		Priority:      p.String(),
		PriorityTone:  PriorityTone(p),
		LastEventType: orDash(r.LastEventType()),
		Time:          FormatClock(t, ok, loc),
	}
	if r.LastEventType() != "" || r.LastEventPayload() != nil {
		row.LastEvent = DescribeEvent(r.LastEventType(), r.LastEventPayload())
	}
	if ok {
		at := t
		row.At = &at
	}
	return row
}
