package domain

import (
	"time"

	"github.com/google/uuid"
)

// VitalReading is one recorded set of vital signs. Fields left at their
// zero value were not measured.
type VitalReading struct {
	ID uuid.UUID

	BloodPressure string // "systolic/diastolic", e.g. "120/80"
	HeartRate     int    // bpm
	Temperature   float64
	Weight        float64
	BloodSugar    float64
	Notes         string

	RecordedAt time.Time
}
