package evaluator

import (
	"testing"
	"time"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/testutil"
)

var medID = testutil.MustParseUUID("11111111-1111-1111-1111-111111111111")

func aspirin(times ...domain.TimeOfDay) domain.Medicine {
	return domain.Medicine{
		ID:     medID,
		Name:   "Aspirin",
		Dosage: "1 tablet",
		Times:  times,
	}
}

func localTime(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.Local)
}

func TestEvaluate_WithinTolerance(t *testing.T) {
	meds := []domain.Medicine{aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})}

	due := Evaluate(meds, localTime(8, 2), 5*time.Minute)
	if len(due) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(due))
	}

	occ := due[0]
	if occ.MedicineID != medID {
		t.Errorf("MedicineID = %v, want %v", occ.MedicineID, medID)
	}
	if occ.Time != (domain.TimeOfDay{Hour: 8, Minute: 0}) {
		t.Errorf("Time = %v, want 08:00", occ.Time)
	}
	if occ.Date != "2024-06-15" {
		t.Errorf("Date = %q, want 2024-06-15", occ.Date)
	}
	if occ.Message != "Time to take Aspirin - 1 tablet" {
		t.Errorf("Message = %q", occ.Message)
	}
	if !occ.ScheduledAt.Equal(localTime(8, 0)) {
		t.Errorf("ScheduledAt = %v, want %v", occ.ScheduledAt, localTime(8, 0))
	}
}

func TestEvaluate_OutsideTolerance(t *testing.T) {
	meds := []domain.Medicine{aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})}

	tests := []struct {
		name string
		now  time.Time
	}{
		{"10 minutes after", localTime(8, 10)},
		{"10 minutes before", localTime(7, 50)},
		{"hours away", localTime(14, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if due := Evaluate(meds, tt.now, 5*time.Minute); len(due) != 0 {
				t.Errorf("got %d occurrences, want 0", len(due))
			}
		})
	}
}

func TestEvaluate_BoundaryOfTolerance(t *testing.T) {
	meds := []domain.Medicine{aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})}

	// Exactly on the edge counts as due.
	if due := Evaluate(meds, localTime(8, 5), 5*time.Minute); len(due) != 1 {
		t.Errorf("at +5m: got %d occurrences, want 1", len(due))
	}
	if due := Evaluate(meds, localTime(7, 55), 5*time.Minute); len(due) != 1 {
		t.Errorf("at -5m: got %d occurrences, want 1", len(due))
	}
	if due := Evaluate(meds, localTime(8, 6), 5*time.Minute); len(due) != 0 {
		t.Errorf("at +6m: got %d occurrences, want 0", len(due))
	}
}

func TestEvaluate_MidnightDoesNotCrossDays(t *testing.T) {
	late := aspirin(domain.TimeOfDay{Hour: 23, Minute: 59})
	early := aspirin(domain.TimeOfDay{Hour: 0, Minute: 1})

	// 00:02 on the 15th: a 23:59 entry resolves to 23:59 *today*,
	// nearly 24h away, not to last night's instant.
	now := localTime(0, 2)
	if due := Evaluate([]domain.Medicine{late}, now, 5*time.Minute); len(due) != 0 {
		t.Errorf("23:59 entry due at 00:02, want not due")
	}
	if due := Evaluate([]domain.Medicine{early}, now, 5*time.Minute); len(due) != 1 {
		t.Errorf("00:01 entry not due at 00:02")
	}

	// 23:58: the 00:01 entry is tomorrow's business, not due now.
	now = localTime(23, 58)
	if due := Evaluate([]domain.Medicine{early}, now, 5*time.Minute); len(due) != 0 {
		t.Errorf("00:01 entry due at 23:58, want not due")
	}
	if due := Evaluate([]domain.Medicine{late}, now, 5*time.Minute); len(due) != 1 {
		t.Errorf("23:59 entry not due at 23:58")
	}
}

func TestEvaluate_StartDate(t *testing.T) {
	med := aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})
	med.StartDate = time.Date(2024, 6, 16, 0, 0, 0, 0, time.Local)

	if due := Evaluate([]domain.Medicine{med}, localTime(8, 2), 5*time.Minute); len(due) != 0 {
		t.Errorf("occurrence before start date, want none")
	}

	med.StartDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	if due := Evaluate([]domain.Medicine{med}, localTime(8, 2), 5*time.Minute); len(due) != 1 {
		t.Errorf("no occurrence on start date, want one")
	}
}

func TestEvaluate_MultipleTimesAndMedicines(t *testing.T) {
	otherID := testutil.MustParseUUID("22222222-2222-2222-2222-222222222222")
	meds := []domain.Medicine{
		aspirin(domain.TimeOfDay{Hour: 8, Minute: 0}, domain.TimeOfDay{Hour: 20, Minute: 0}),
		{
			ID:     otherID,
			Name:   "Metformin",
			Dosage: "500mg",
			Times:  []domain.TimeOfDay{{Hour: 8, Minute: 1}},
		},
	}

	due := Evaluate(meds, localTime(8, 2), 5*time.Minute)
	if len(due) != 2 {
		t.Fatalf("got %d occurrences, want 2 (08:00 aspirin + 08:01 metformin)", len(due))
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	meds := []domain.Medicine{aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})}
	now := localTime(8, 2)

	a := Evaluate(meds, now, 5*time.Minute)
	b := Evaluate(meds, now, 5*time.Minute)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("occurrence %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEvaluate_ZeroToleranceUsesDefault(t *testing.T) {
	meds := []domain.Medicine{aspirin(domain.TimeOfDay{Hour: 8, Minute: 0})}
	if due := Evaluate(meds, localTime(8, 4), 0); len(due) != 1 {
		t.Errorf("default tolerance not applied: got %d occurrences, want 1", len(due))
	}
}
