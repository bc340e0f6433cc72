package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Poller metrics
	TickStarted()
	TickCompleted(duration time.Duration, dueCount int, err error)

	// Alert lifecycle metrics
	AlertTransition(transition string)
	ActiveAlertsUpdate(count int)

	// Caretaker delivery metrics
	DeliveryAttemptCompleted(attempt int, statusClass string, duration time.Duration)
	DeliveryOutcome(outcome string)
	EventsInFlightIncr()
	EventsInFlightDecr()

	// EventBus metrics
	BufferSizeUpdate(size int)
	BufferCapacitySet(capacity int)
	BufferSaturationUpdate(saturation float64)
	EmitError()
}

// Outcome constants for DeliveryOutcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Transition constants for AlertTransition.
const (
	TransitionFired        = "fired"
	TransitionAcknowledged = "acknowledged"
	TransitionSnoozed      = "snoozed"
	TransitionResurfaced   = "resurfaced"
	TransitionExpired      = "expired"
)
