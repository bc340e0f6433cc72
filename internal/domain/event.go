package domain

import "time"

type AlertEventType string

const (
	AlertEventFired        AlertEventType = "fired"
	AlertEventSnoozed      AlertEventType = "snoozed"
	AlertEventResurfaced   AlertEventType = "resurfaced"
	AlertEventAcknowledged AlertEventType = "acknowledged"
	AlertEventExpired      AlertEventType = "expired"
)

// AlertEvent is emitted on every alert state transition so the display
// layer and caretaker notifier can react.
type AlertEvent struct {
	Type  AlertEventType
	Alert Alert
	At    time.Time
}
