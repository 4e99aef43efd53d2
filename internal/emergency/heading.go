package emergency

import "time"

// UnknownDateKey groups records without a resolvable time.
const UnknownDateKey = "unknown"

// UnknownDateLabel is shown for the unknown bucket.
const UnknownDateLabel = "Unknown date"

// DateKey is the YYYY-MM-DD UTC date of t, or UnknownDateKey.
func DateKey(t time.Time, ok bool) string {
	if !ok {
		return UnknownDateKey
	}
	return t.UTC().Format("2006-01-02")
}

// FormatDateHeading describes t relative to now in now's time zone: "Today",
// "Yesterday", a weekday name within the last week, otherwise the month and
// day, adding the year when it differs from now.
func FormatDateHeading(t time.Time, ok bool, now time.Time) string {
	if !ok {
		return UnknownDateLabel
	}
	loc := now.Location()
	local := t.In(loc)

	today := midnight(now)
	day := midnight(local)

	// Calendar-day difference; dates avoid DST-length days.
	diffDays := daysBetween(day, today)
	switch {
	case diffDays == 0:
		return "Today"
	case diffDays == 1:
		return "Yesterday"
	case diffDays > 1 && diffDays < 7:
		return local.Weekday().String()
	}
	if local.Year() == now.Year() {
		return local.Format("January 2")
	}
	return local.Format("January 2, 2006")
}

// FormatClock renders the time of day, e.g. "2:34 PM", or "-".
func FormatClock(t time.Time, ok bool, loc *time.Location) string {
	if !ok {
		return "-"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("3:04 PM")
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 12, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
