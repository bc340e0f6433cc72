package api

import (
	"time"

	"github.com/Viveksharma8542/healthalert-app/internal/vitals"
)

type CreateMedicineRequest struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Notes     string   `json:"notes,omitempty"`
	Frequency string   `json:"frequency,omitempty"`
	Times     []string `json:"times"`                // "HH:MM", 24-hour
	StartDate string   `json:"start_date,omitempty"` // "YYYY-MM-DD"
}

type MedicineResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Notes     string   `json:"notes,omitempty"`
	Frequency string   `json:"frequency,omitempty"`
	Times     []string `json:"times"`
	StartDate string   `json:"start_date,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type ListMedicinesResponse struct {
	Medicines []MedicineResponse `json:"medicines"`
}

type AlertResponse struct {
	ID          string `json:"id"`
	MedicineID  string `json:"medicine_id"`
	Message     string `json:"message"`
	ScheduledAt string `json:"scheduled_at"`
	FiredAt     string `json:"fired_at"`
	State       string `json:"state"`
	SnoozeUntil string `json:"snooze_until,omitempty"`
}

type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

type SnoozeRequest struct {
	// Duration like "10m". Empty uses the configured default.
	Duration string `json:"duration,omitempty"`
}

type HistoryEntryResponse struct {
	ID            string `json:"id"`
	OccurrenceKey string `json:"occurrence_key,omitempty"`
	Message       string `json:"message"`
	FiredAt       string `json:"fired_at,omitempty"`
	Resolution    string `json:"resolution"`
	ResolvedAt    string `json:"resolved_at"`
}

type ListHistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

type CreateVitalRequest struct {
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     int     `json:"heart_rate,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	BloodSugar    float64 `json:"blood_sugar,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type VitalResponse struct {
	ID            string         `json:"id"`
	BloodPressure string         `json:"blood_pressure,omitempty"`
	HeartRate     int            `json:"heart_rate,omitempty"`
	Temperature   float64        `json:"temperature,omitempty"`
	Weight        float64        `json:"weight,omitempty"`
	BloodSugar    float64        `json:"blood_sugar,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	RecordedAt    string         `json:"recorded_at"`
	Status        vitals.Summary `json:"status"`
}

type ListVitalsResponse struct {
	Vitals []VitalResponse `json:"vitals"`
}

type CreateContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
	Email        string `json:"email,omitempty"`
}

type ContactResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
	Email        string `json:"email,omitempty"`
}

type ListContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}

type CaretakerAlertRequest struct {
	// Kind is one of the quick-alert kinds or "custom".
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"` // required for "custom"
}

type AdherenceResponse struct {
	MedicineID string             `json:"medicine_id"`
	Resolution string             `json:"resolution"`
	Days       []DayCountResponse `json:"days"`
}

type DayCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
