// Package evaluator computes which reminder occurrences are due at a
// given instant. Evaluate is pure: identical inputs always yield
// identical output, so tests drive it with fixed clocks.
package evaluator

import (
	"fmt"
	"time"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// DefaultTolerance is the window around a scheduled instant within
// which "now" counts as due.
const DefaultTolerance = 5 * time.Minute

// Evaluate returns the occurrences due at now. An occurrence is due iff
// |now - scheduled| <= tolerance, where the scheduled instant is built
// on now's calendar date in now's location. Entries near midnight can
// therefore never match the previous or next day's instant.
func Evaluate(medicines []domain.Medicine, now time.Time, tolerance time.Duration) []domain.Occurrence {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	date := now.Format(domain.DateLayout)
	var due []domain.Occurrence

	for _, med := range medicines {
		for _, tod := range med.Times {
			instant := tod.At(now)

			if !med.StartDate.IsZero() && instant.Before(med.StartDate) {
				continue
			}

			diff := now.Sub(instant)
			if diff < 0 {
				diff = -diff
			}
			if diff > tolerance {
				continue
			}

			due = append(due, domain.Occurrence{
				MedicineID:  med.ID,
				Time:        tod,
				Date:        date,
				ScheduledAt: instant,
				Message:     fmt.Sprintf("Time to take %s - %s", med.Name, med.Dosage),
			})
		}
	}

	return due
}
