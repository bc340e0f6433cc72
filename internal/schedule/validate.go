// Package schedule validates medicine schedules before they reach the
// evaluator. A schedule that passes Validate never produces an error
// downstream; malformed input is rejected at creation time.
package schedule

import (
	"errors"
	"fmt"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// ErrInvalidSchedule marks a malformed schedule. Wrapped errors carry
// the specific field failure.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ValidFrequencies lists the accepted descriptive frequency tags.
var ValidFrequencies = []domain.Frequency{
	domain.FrequencyDaily,
	domain.FrequencyTwiceDaily,
	domain.FrequencyThreeTimes,
	domain.FrequencyAsNeeded,
}

// Validate checks a medicine's schedule fields.
func Validate(m domain.Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSchedule)
	}
	if m.Dosage == "" {
		return fmt.Errorf("%w: dosage is required", ErrInvalidSchedule)
	}
	if len(m.Times) == 0 {
		return fmt.Errorf("%w: at least one reminder time is required", ErrInvalidSchedule)
	}

	seen := make(map[domain.TimeOfDay]struct{}, len(m.Times))
	for _, t := range m.Times {
		if !t.Valid() {
			return fmt.Errorf("%w: time %q out of range", ErrInvalidSchedule, t)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate reminder time %s", ErrInvalidSchedule, t)
		}
		seen[t] = struct{}{}
	}

	if m.Frequency != "" && !validFrequency(m.Frequency) {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, m.Frequency)
	}

	return nil
}

func validFrequency(f domain.Frequency) bool {
	for _, v := range ValidFrequencies {
		if f == v {
			return true
		}
	}
	return false
}

// ParseTimes converts "HH:MM" strings into time-of-day values,
// preserving order.
func ParseTimes(raw []string) ([]domain.TimeOfDay, error) {
	times := make([]domain.TimeOfDay, 0, len(raw))
	for _, s := range raw {
		t, err := domain.ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		times = append(times, t)
	}
	return times, nil
}
