package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/sagipero/admin-console/internal/sagipero"
)

// Alert severities.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
	SeveritySevere = "SEVERE"
)

// Alert scopes.
const (
	ScopeToday = "today"
	ScopeWeek  = "week"
)

var manila = loadManila()

func loadManila() *time.Location {
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		return time.FixedZone("PHT", 8*60*60)
	}
	return loc
}

// Manila returns the Philippine time zone alerts are computed in.
func Manila() *time.Location { return manila }

// Window is the validity range of a daily alert.
type Window struct {
	Start time.Time
	End   time.Time
}

// AlertWindow returns the Manila-local range for a scope: the current day,
// or Monday through Sunday of the current week. Unknown scopes have no
// window.
func AlertWindow(scope string, now time.Time) (Window, bool) {
	local := now.In(manila)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, manila)
	endOfDay := func(t time.Time) time.Time {
		return t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	switch scope {
	case ScopeToday:
		return Window{Start: day, End: endOfDay(day)}, true
	case ScopeWeek:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, -(weekday - 1))
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, true
	}
	return Window{}, false
}

// AlertRequest is what an operator submits from the forecast panel.
type AlertRequest struct {
	Title         string           `json:"title"`
	Daily         bool             `json:"daily"`
	Scope         string           `json:"scope" validate:"omitempty,oneof=today week"`
	Area          *sagipero.Bounds `json:"area"`
	HourlyIndexes []int            `json:"hourlyIndexes" validate:"omitempty,dive,gte=0"`
	Severity      string           `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH SEVERE low medium high severe"`
	BroadcastAll  *bool            `json:"broadcastAll"`
	TargetRoles   []string         `json:"targetRoles" validate:"omitempty,dive,oneof=ADMIN RESPONDER RESIDENT"`
}

// NewAlert builds the backend payload. Daily alerts carry no hour indexes;
// hourly alerts need at least one. Broadcasting is the default, in which case
// no target roles are sent.
func NewAlert(req AlertRequest, now time.Time) (sagipero.WeatherAlert, error) {
	alert := sagipero.WeatherAlert{
		Title:        strings.TrimSpace(req.Title),
		Area:         req.Area,
		Daily:        req.Daily,
		Severity:     strings.ToUpper(req.Severity),
		BroadcastAll: req.BroadcastAll == nil || *req.BroadcastAll,
	}
	if alert.Title == "" {
		alert.Title = "Weather Alert"
	}
	if alert.Severity == "" {
		alert.Severity = SeverityMedium
	}

	if req.Daily {
		alert.Message = "Daily forecast alert"
		if req.Scope != "" {
			w, ok := AlertWindow(req.Scope, now)
			if !ok {
				return sagipero.WeatherAlert{}, fmt.Errorf("unknown alert scope %q", req.Scope)
			}
			scope := req.Scope
			alert.Scope = &scope
			start, end := w.Start.UTC(), w.End.UTC()
			alert.StartAt, alert.EndAt = &start, &end
		}
	} else {
		if len(req.HourlyIndexes) == 0 {
			return sagipero.WeatherAlert{}, fmt.Errorf("hourly alert needs at least one forecast hour")
		}
		alert.Message = "Hourly forecast alert"
		alert.HourlyIndexes = req.HourlyIndexes
	}

	if !alert.BroadcastAll {
		if len(req.TargetRoles) == 0 {
			return sagipero.WeatherAlert{}, fmt.Errorf("targeted alert needs at least one role")
		}
		alert.TargetRoles = req.TargetRoles
	}
	return alert, nil
}

// HourlyTitle is the title of a single-hour alert sent from the forecast list.
func HourlyTitle(h Hour) string {
	return "Weather alert " + h.Label
}
