// Package api exposes the HTTP surface: medicine schedules, live
// alerts, dose history, vitals, contacts and caretaker alerts.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Viveksharma8542/healthalert-app/internal/alert"
	"github.com/Viveksharma8542/healthalert-app/internal/analytics"
	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/schedule"
)

// Pagination defaults and limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

type Store interface {
	CreateMedicine(ctx context.Context, m domain.Medicine) error
	ListMedicines(ctx context.Context) ([]domain.Medicine, error)
	GetMedicine(ctx context.Context, id uuid.UUID) (domain.Medicine, error)
	UpdateMedicine(ctx context.Context, m domain.Medicine) error
	DeleteMedicine(ctx context.Context, id uuid.UUID) error

	InsertVitalReading(ctx context.Context, v domain.VitalReading) error
	ListVitalReadings(ctx context.Context, limit, offset int) ([]domain.VitalReading, error)

	CreateContact(ctx context.Context, c domain.Contact) error
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) error
}

// AlertService is the live-alert surface the handler drives.
type AlertService interface {
	Active() []domain.Alert
	Acknowledge(ctx context.Context, id domain.OccurrenceKey) error
	Snooze(ctx context.Context, id domain.OccurrenceKey, d time.Duration) error
}

// HistorySource reads and appends finalized alert records.
type HistorySource interface {
	Recent(n int) []domain.HistoryEntry
	Append(ctx context.Context, entry domain.HistoryEntry) error
}

// CaretakerNotifier sends direct caretaker messages.
type CaretakerNotifier interface {
	NotifyCaretakers(ctx context.Context, kind, message string) error
}

// AdherenceSource reads per-medicine adherence counters.
type AdherenceSource interface {
	DailyCounts(ctx context.Context, medicineID uuid.UUID, resolution domain.Resolution, days int) ([]analytics.DayCount, error)
}

// HealthChecker provides database health status for the /health endpoint.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	store         Store
	alerts        AlertService
	history       HistorySource
	notifier      CaretakerNotifier
	adherence     AdherenceSource
	db            HealthChecker
	snoozeDefault time.Duration
	clock         func() time.Time
}

func NewHandler(store Store, alerts AlertService, history HistorySource, snoozeDefault time.Duration) *Handler {
	if snoozeDefault <= 0 {
		snoozeDefault = 10 * time.Minute
	}
	return &Handler{
		store:         store,
		alerts:        alerts,
		history:       history,
		snoozeDefault: snoozeDefault,
		clock:         time.Now,
	}
}

// WithNotifier enables the caretaker-alert endpoint.
func (h *Handler) WithNotifier(n CaretakerNotifier) *Handler {
	h.notifier = n
	return h
}

// WithAdherence enables the adherence endpoint.
func (h *Handler) WithAdherence(a AdherenceSource) *Handler {
	h.adherence = a
	return h
}

// WithHealthChecker sets the database health checker for verbose /health responses.
func (h *Handler) WithHealthChecker(db HealthChecker) *Handler {
	h.db = db
	return h
}

// Routes builds the HTTP router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.health)

	r.Route("/medicines", func(r chi.Router) {
		r.Post("/", h.createMedicine)
		r.Get("/", h.listMedicines)
		r.Get("/{id}", h.getMedicine)
		r.Put("/{id}", h.updateMedicine)
		r.Delete("/{id}", h.deleteMedicine)
		r.Get("/{id}/adherence", h.getAdherence)
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.listAlerts)
		r.Post("/{id}/acknowledge", h.acknowledgeAlert)
		r.Post("/{id}/snooze", h.snoozeAlert)
	})

	r.Get("/history", h.listHistory)

	r.Route("/vitals", func(r chi.Router) {
		r.Post("/", h.createVital)
		r.Get("/", h.listVitals)
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.createContact)
		r.Get("/", h.listContacts)
		r.Delete("/{id}", h.deleteContact)
	})

	r.Post("/caretaker-alerts", h.createCaretakerAlert)

	return r
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Components["database"] = "unhealthy: " + err.Error()
	} else {
		resp.Components["database"] = "healthy"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, resp)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	med, err := medicineFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.clock().UTC()
	med.ID = uuid.New()
	med.CreatedAt = now
	med.UpdatedAt = now

	if err := schedule.Validate(med); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateMedicine(r.Context(), med); err != nil {
		log.Printf("api: create medicine error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create medicine")
		return
	}

	writeJSON(w, http.StatusCreated, medicineResponse(med))
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.ListMedicines(r.Context())
	if err != nil {
		log.Printf("api: list medicines error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list medicines")
		return
	}

	resp := ListMedicinesResponse{Medicines: make([]MedicineResponse, len(medicines))}
	for i, m := range medicines {
		resp.Medicines[i] = medicineResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	med, err := h.store.GetMedicine(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "medicine not found")
			return
		}
		log.Printf("api: get medicine error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get medicine")
		return
	}

	writeJSON(w, http.StatusOK, medicineResponse(med))
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CreateMedicineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	existing, err := h.store.GetMedicine(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "medicine not found")
			return
		}
		log.Printf("api: get medicine error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get medicine")
		return
	}

	med, err := medicineFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	med.ID = existing.ID
	med.CreatedAt = existing.CreatedAt
	med.UpdatedAt = h.clock().UTC()

	if err := schedule.Validate(med); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateMedicine(r.Context(), med); err != nil {
		log.Printf("api: update medicine error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update medicine")
		return
	}

	writeJSON(w, http.StatusOK, medicineResponse(med))
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteMedicine(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "medicine not found")
			return
		}
		log.Printf("api: delete medicine error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete medicine")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getAdherence(w http.ResponseWriter, r *http.Request) {
	if h.adherence == nil {
		writeError(w, http.StatusNotFound, "adherence tracking not enabled")
		return
	}

	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	resolution := domain.Resolution(r.URL.Query().Get("resolution"))
	if resolution == "" {
		resolution = domain.ResolutionTaken
	}
	if resolution != domain.ResolutionTaken && resolution != domain.ResolutionMissed {
		writeError(w, http.StatusBadRequest, "resolution must be taken or missed")
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		n, err := strconv.Atoi(daysStr)
		if err != nil || n < 1 || n > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = n
	}

	counts, err := h.adherence.DailyCounts(r.Context(), id, resolution, days)
	if err != nil {
		log.Printf("api: adherence error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read adherence counters")
		return
	}

	resp := AdherenceResponse{
		MedicineID: id.String(),
		Resolution: string(resolution),
		Days:       make([]DayCountResponse, len(counts)),
	}
	for i, c := range counts {
		resp.Days[i] = DayCountResponse{Date: c.Date, Count: c.Count}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit, _, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := h.history.Recent(limit)

	resp := ListHistoryResponse{Entries: make([]HistoryEntryResponse, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = HistoryEntryResponse{
			ID:            e.ID.String(),
			OccurrenceKey: string(e.OccurrenceKey),
			Message:       e.Message,
			Resolution:    string(e.Resolution),
			ResolvedAt:    formatTime(e.ResolvedAt),
		}
		if !e.FiredAt.IsZero() {
			resp.Entries[i].FiredAt = formatTime(e.FiredAt)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// medicineFromRequest builds an unvalidated Medicine from a request body.
func medicineFromRequest(req CreateMedicineRequest) (domain.Medicine, error) {
	times, err := schedule.ParseTimes(req.Times)
	if err != nil {
		return domain.Medicine{}, err
	}

	med := domain.Medicine{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Notes:     req.Notes,
		Frequency: domain.Frequency(req.Frequency),
		Times:     times,
	}

	if req.StartDate != "" {
		// Midnight local, matching the clock the evaluator fires on.
		start, err := time.ParseInLocation(domain.DateLayout, req.StartDate, time.Local)
		if err != nil {
			return domain.Medicine{}, errors.New("start_date must be YYYY-MM-DD")
		}
		med.StartDate = start
	}

	return med, nil
}

func medicineResponse(m domain.Medicine) MedicineResponse {
	times := make([]string, len(m.Times))
	for i, t := range m.Times {
		times[i] = t.String()
	}

	resp := MedicineResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Dosage:    m.Dosage,
		Notes:     m.Notes,
		Frequency: string(m.Frequency),
		Times:     times,
		CreatedAt: formatTime(m.CreatedAt),
		UpdatedAt: formatTime(m.UpdatedAt),
	}
	if !m.StartDate.IsZero() {
		resp.StartDate = m.StartDate.Format(domain.DateLayout)
	}
	return resp
}

// decodeBody decodes a size-limited JSON request body. On failure it
// writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// alertNotFound maps lifecycle lookup failures to 404s.
func alertNotFound(err error) bool {
	return errors.Is(err, alert.ErrAlertNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// parsePagination extracts and validates limit/offset query parameters.
// Returns DefaultLimit if limit is not specified, and 0 for offset if not specified.
// Returns an error if limit exceeds MaxLimit or if values are negative/invalid.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultLimit
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}
		if limit < 0 {
			return 0, 0, strconv.ErrRange
		}
		if limit > MaxLimit {
			return 0, 0, &limitExceededError{max: MaxLimit}
		}
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}
		if offset < 0 {
			return 0, 0, strconv.ErrRange
		}
	}

	return limit, offset, nil
}

type limitExceededError struct {
	max int
}

func (e *limitExceededError) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(e.max)
}
