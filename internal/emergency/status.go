package emergency

// Emergency statuses.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusArrived    = "ARRIVED"
	StatusResolved   = "RESOLVED"
	StatusCancelled  = "CANCELLED"
)

var transitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusResolved},
}

// CanTransition reports whether the backend's lifecycle allows moving from
// one status to another. The console uses it for display hints only.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusPill is the display label and tone of a status badge.
type StatusPill struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// PillForStatus maps a status to its badge.
func PillForStatus(status string) StatusPill {
	switch status {
	case StatusInProgress:
		return StatusPill{Label: "IN PROGRESS", Tone: "amber"}
	case StatusResolved:
		return StatusPill{Label: "Resolved", Tone: "green"}
	case StatusArrived:
		return StatusPill{Label: "ARRIVED", Tone: "purple"}
	case StatusPending:
		return StatusPill{Label: "Pending", Tone: "blue"}
	case StatusCancelled:
		return StatusPill{Label: "Cancelled", Tone: "red"}
	case "":
		return StatusPill{Label: "-", Tone: "slate"}
	}
	return StatusPill{Label: status, Tone: "slate"}
}

// PriorityTone is the badge color of a display priority.
func PriorityTone(p Priority) string {
	if p.Kind != KindLabel {
		return "slate"
	}
	switch p.Label {
	case High:
		return "red"
	case Medium:
		return "yellow"
	default:
		return "green"
	}
}
