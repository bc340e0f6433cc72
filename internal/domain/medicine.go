package domain

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyTwiceDaily Frequency = "twice-daily"
	FrequencyThreeTimes Frequency = "three-times"
	FrequencyAsNeeded   Frequency = "as-needed"
)

// Medicine is a recurring reminder schedule. Firing is driven solely by
// Times; Frequency is a descriptive tag.
type Medicine struct {
	ID uuid.UUID

	Name   string
	Dosage string
	Notes  string

	Frequency Frequency
	Times     []TimeOfDay

	// StartDate is midnight local on the first day reminders apply.
	// Zero means no lower bound.
	StartDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
