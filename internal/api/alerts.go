package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.alerts.Active()

	resp := ListAlertsResponse{Alerts: make([]AlertResponse, len(alerts))}
	for i, a := range alerts {
		resp.Alerts[i] = AlertResponse{
			ID:          string(a.ID),
			MedicineID:  a.MedicineID.String(),
			Message:     a.Message,
			ScheduledAt: formatTime(a.ScheduledAt),
			FiredAt:     formatTime(a.FiredAt),
			State:       string(a.State),
		}
		if a.State == domain.AlertStateSnoozed {
			resp.Alerts[i].SnoozeUntil = formatTime(a.SnoozeUntil)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// alertIDParam extracts the occurrence key from the URL. Keys contain
// "|" so clients send them percent-encoded.
func alertIDParam(r *http.Request) domain.OccurrenceKey {
	raw := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return domain.OccurrenceKey(raw)
}

func (h *Handler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := alertIDParam(r)

	if err := h.alerts.Acknowledge(r.Context(), id); err != nil {
		if alertNotFound(err) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		log.Printf("api: acknowledge alert error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snoozeAlert(w http.ResponseWriter, r *http.Request) {
	id := alertIDParam(r)

	// Body is optional; an empty body snoozes for the default duration.
	var req SnoozeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	d := h.snoozeDefault
	if req.Duration != "" {
		parsed, err := time.ParseDuration(req.Duration)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "duration must be a positive duration like \"10m\"")
			return
		}
		d = parsed
	}

	if err := h.alerts.Snooze(r.Context(), id, d); err != nil {
		if alertNotFound(err) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		log.Printf("api: snooze alert error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to snooze alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
