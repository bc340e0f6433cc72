package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/vitals"
)

func (h *Handler) createVital(w http.ResponseWriter, r *http.Request) {
	var req CreateVitalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.BloodPressure == "" && req.HeartRate == 0 && req.Temperature == 0 &&
		req.Weight == 0 && req.BloodSugar == 0 {
		writeError(w, http.StatusBadRequest, "at least one measurement is required")
		return
	}

	if req.BloodPressure != "" {
		if _, _, err := vitals.ParseBloodPressure(req.BloodPressure); err != nil {
			writeError(w, http.StatusBadRequest, "blood_pressure must look like \"120/80\"")
			return
		}
	}

	reading := domain.VitalReading{
		ID:            uuid.New(),
		BloodPressure: req.BloodPressure,
		HeartRate:     req.HeartRate,
		Temperature:   req.Temperature,
		Weight:        req.Weight,
		BloodSugar:    req.BloodSugar,
		Notes:         req.Notes,
		RecordedAt:    h.clock().UTC(),
	}

	if err := h.store.InsertVitalReading(r.Context(), reading); err != nil {
		log.Printf("api: create vital error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record vitals")
		return
	}

	writeJSON(w, http.StatusCreated, vitalResponse(reading))
}

func (h *Handler) listVitals(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := h.store.ListVitalReadings(r.Context(), limit, offset)
	if err != nil {
		log.Printf("api: list vitals error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list vitals")
		return
	}

	resp := ListVitalsResponse{Vitals: make([]VitalResponse, len(readings))}
	for i, reading := range readings {
		resp.Vitals[i] = vitalResponse(reading)
	}

	writeJSON(w, http.StatusOK, resp)
}

func vitalResponse(r domain.VitalReading) VitalResponse {
	return VitalResponse{
		ID:            r.ID.String(),
		BloodPressure: r.BloodPressure,
		HeartRate:     r.HeartRate,
		Temperature:   r.Temperature,
		Weight:        r.Weight,
		BloodSugar:    r.BloodSugar,
		Notes:         r.Notes,
		RecordedAt:    formatTime(r.RecordedAt),
		Status:        vitals.Classify(r),
	}
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	contact := domain.Contact{
		ID:           uuid.New(),
		Name:         req.Name,
		Phone:        req.Phone,
		Relationship: req.Relationship,
		Email:        req.Email,
	}

	if err := h.store.CreateContact(r.Context(), contact); err != nil {
		log.Printf("api: create contact error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	writeJSON(w, http.StatusCreated, contactResponse(contact))
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.ListContacts(r.Context())
	if err != nil {
		log.Printf("api: list contacts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	resp := ListContactsResponse{Contacts: make([]ContactResponse, len(contacts))}
	for i, c := range contacts {
		resp.Contacts[i] = contactResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteContact(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		log.Printf("api: delete contact error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func contactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Phone:        c.Phone,
		Relationship: c.Relationship,
		Email:        c.Email,
	}
}

// quickAlertMessages are the canned caretaker alerts. "custom" carries
// its own message.
var quickAlertMessages = map[string]string{
	"help":     "I need help",
	"fall":     "I have fallen and need assistance",
	"medicine": "I forgot to take my medicine",
	"pain":     "I am experiencing pain",
	"confused": "I am feeling confused or disoriented",
	"sick":     "I am not feeling well",
}

func (h *Handler) createCaretakerAlert(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		writeError(w, http.StatusNotFound, "caretaker alerts not enabled")
		return
	}

	var req CaretakerAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	message := req.Message
	if req.Kind == "custom" {
		if message == "" {
			writeError(w, http.StatusBadRequest, "message is required for custom alerts")
			return
		}
	} else {
		canned, ok := quickAlertMessages[req.Kind]
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown alert kind")
			return
		}
		message = canned
	}

	if err := h.notifier.NotifyCaretakers(r.Context(), req.Kind, message); err != nil {
		log.Printf("api: caretaker alert error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to send caretaker alert")
		return
	}

	now := h.clock().UTC()
	entry := domain.HistoryEntry{
		ID:         uuid.New(),
		Message:    message,
		Resolution: domain.ResolutionSent,
		ResolvedAt: now,
	}
	if err := h.history.Append(r.Context(), entry); err != nil {
		log.Printf("api: caretaker alert history error: %v", err)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"kind":    req.Kind,
		"message": message,
	})
}
