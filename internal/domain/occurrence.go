package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OccurrenceKey uniquely identifies one firing instance of a schedule
// entry on one calendar day: "medicineID|HH:MM|YYYY-MM-DD".
type OccurrenceKey string

// Occurrence is one calendar-day instance of a schedule's time-of-day
// entry becoming due. Derived, never persisted.
type Occurrence struct {
	MedicineID uuid.UUID
	Time       TimeOfDay
	Date       string // YYYY-MM-DD

	ScheduledAt time.Time
	Message     string
}

func (o Occurrence) Key() OccurrenceKey {
	return MakeOccurrenceKey(o.MedicineID, o.Time, o.Date)
}

func MakeOccurrenceKey(medicineID uuid.UUID, t TimeOfDay, date string) OccurrenceKey {
	return OccurrenceKey(fmt.Sprintf("%s|%s|%s", medicineID, t, date))
}
