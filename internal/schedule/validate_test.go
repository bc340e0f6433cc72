package schedule

import (
	"errors"
	"testing"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

func validMedicine() domain.Medicine {
	return domain.Medicine{
		Name:      "Aspirin",
		Dosage:    "1 tablet",
		Frequency: domain.FrequencyDaily,
		Times:     []domain.TimeOfDay{{Hour: 8, Minute: 0}},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validMedicine()); err != nil {
		t.Fatalf("Validate returned %v, want nil", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Medicine)
	}{
		{"missing name", func(m *domain.Medicine) { m.Name = "" }},
		{"missing dosage", func(m *domain.Medicine) { m.Dosage = "" }},
		{"no times", func(m *domain.Medicine) { m.Times = nil }},
		{"hour out of range", func(m *domain.Medicine) {
			m.Times = []domain.TimeOfDay{{Hour: 24, Minute: 0}}
		}},
		{"minute out of range", func(m *domain.Medicine) {
			m.Times = []domain.TimeOfDay{{Hour: 8, Minute: 60}}
		}},
		{"duplicate times", func(m *domain.Medicine) {
			m.Times = []domain.TimeOfDay{{Hour: 8, Minute: 0}, {Hour: 8, Minute: 0}}
		}},
		{"unknown frequency", func(m *domain.Medicine) { m.Frequency = "hourly" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMedicine()
			tt.mutate(&m)

			err := Validate(m)
			if err == nil {
				t.Fatal("Validate returned nil, want error")
			}
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("error %v does not wrap ErrInvalidSchedule", err)
			}
		})
	}
}

func TestValidate_EmptyFrequencyAllowed(t *testing.T) {
	m := validMedicine()
	m.Frequency = ""
	if err := Validate(m); err != nil {
		t.Fatalf("Validate returned %v, want nil", err)
	}
}

func TestParseTimes(t *testing.T) {
	times, err := ParseTimes([]string{"08:00", "20:30"})
	if err != nil {
		t.Fatalf("ParseTimes error: %v", err)
	}
	want := []domain.TimeOfDay{{Hour: 8, Minute: 0}, {Hour: 20, Minute: 30}}
	if len(times) != len(want) {
		t.Fatalf("got %d times, want %d", len(times), len(want))
	}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("times[%d] = %v, want %v", i, times[i], want[i])
		}
	}

	if _, err := ParseTimes([]string{"26:00"}); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("ParseTimes bad input error = %v, want ErrInvalidSchedule", err)
	}
}
