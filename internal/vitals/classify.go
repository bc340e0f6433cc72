// Package vitals classifies recorded vital signs against fixed
// reference ranges. Pure functions, no state.
package vitals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

type Status string

const (
	StatusNormal  Status = "normal"
	StatusHigh    Status = "high"
	StatusLow     Status = "low"
	StatusUnknown Status = "unknown" // not measured or unparseable
)

// ClassifyBloodPressure takes "systolic/diastolic" (mmHg).
// High: systolic > 140 or diastolic > 90. Low: systolic < 90 or
// diastolic < 60.
func ClassifyBloodPressure(reading string) Status {
	systolic, diastolic, err := ParseBloodPressure(reading)
	if err != nil {
		return StatusUnknown
	}
	switch {
	case systolic > 140 || diastolic > 90:
		return StatusHigh
	case systolic < 90 || diastolic < 60:
		return StatusLow
	default:
		return StatusNormal
	}
}

// ParseBloodPressure splits "120/80" into systolic and diastolic.
func ParseBloodPressure(reading string) (systolic, diastolic int, err error) {
	parts := strings.SplitN(reading, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid blood pressure %q: want systolic/diastolic", reading)
	}
	systolic, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid systolic in %q", reading)
	}
	diastolic, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid diastolic in %q", reading)
	}
	if systolic <= 0 || diastolic <= 0 {
		return 0, 0, fmt.Errorf("blood pressure %q out of range", reading)
	}
	return systolic, diastolic, nil
}

// ClassifyHeartRate takes bpm. High: > 100. Low: < 60.
func ClassifyHeartRate(bpm int) Status {
	switch {
	case bpm <= 0:
		return StatusUnknown
	case bpm > 100:
		return StatusHigh
	case bpm < 60:
		return StatusLow
	default:
		return StatusNormal
	}
}

// ClassifyTemperature takes degrees Celsius. High: > 37.5. Low: < 36.0.
func ClassifyTemperature(celsius float64) Status {
	switch {
	case celsius == 0:
		return StatusUnknown
	case celsius > 37.5:
		return StatusHigh
	case celsius < 36.0:
		return StatusLow
	default:
		return StatusNormal
	}
}

// Summary holds per-measurement statuses for one reading.
type Summary struct {
	BloodPressure Status `json:"blood_pressure"`
	HeartRate     Status `json:"heart_rate"`
	Temperature   Status `json:"temperature"`
}

// Classify evaluates every measured field of a reading. Unmeasured
// fields come back as unknown.
func Classify(r domain.VitalReading) Summary {
	s := Summary{
		HeartRate:   ClassifyHeartRate(r.HeartRate),
		Temperature: ClassifyTemperature(r.Temperature),
	}
	if r.BloodPressure == "" {
		s.BloodPressure = StatusUnknown
	} else {
		s.BloodPressure = ClassifyBloodPressure(r.BloodPressure)
	}
	return s
}
