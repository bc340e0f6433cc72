package domain

import (
	"time"

	"github.com/google/uuid"
)

type Resolution string

const (
	ResolutionTaken  Resolution = "taken"
	ResolutionMissed Resolution = "missed"
	ResolutionSent   Resolution = "sent" // caretaker messages
)

// HistoryEntry records a finalized alert. Append-only.
type HistoryEntry struct {
	ID uuid.UUID

	// OccurrenceKey is empty for caretaker messages, which are not tied
	// to a schedule.
	OccurrenceKey OccurrenceKey

	Message    string
	FiredAt    time.Time
	Resolution Resolution
	ResolvedAt time.Time
}
