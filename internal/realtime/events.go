package realtime

// Events pushed by the backend. Payloads are only used as refresh triggers.
const (
	EventEmergencyNew     = "emergency:new"
	EventEmergencyUpdated = "emergency:updated"
	EventResponderStatus  = "responder:status"
	EventNotificationNew  = "notification:new"
	EventFraudFlagged     = "emergency:fraud"
	EventFraudCleared     = "emergency:fraud:cleared"
)

// Events lists every event the console listens for.
var Events = []string{
	EventEmergencyNew,
	EventEmergencyUpdated,
	EventResponderStatus,
	EventNotificationNew,
	EventFraudFlagged,
	EventFraudCleared,
}
