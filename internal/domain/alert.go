package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertState string

const (
	AlertStateActive       AlertState = "active"
	AlertStateSnoozed      AlertState = "snoozed"
	AlertStateAcknowledged AlertState = "acknowledged"
	AlertStateExpired      AlertState = "expired"
)

// Alert is a live reminder raised for one occurrence. Its ID is the
// occurrence key, which is what makes repeated reconciliation idempotent.
type Alert struct {
	ID OccurrenceKey

	MedicineID uuid.UUID
	Message    string

	ScheduledAt time.Time
	FiredAt     time.Time // first detection

	State AlertState

	// SnoozeUntil is set only while State is snoozed.
	SnoozeUntil time.Time
}
