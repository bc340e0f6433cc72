package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Viveksharma8542/healthalert-app/internal/alert"
	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// mockHandlerStore implements api.Store for handler tests.
type mockHandlerStore struct {
	mu sync.Mutex

	createMedicineFn func(ctx context.Context, m domain.Medicine) error
	listMedicinesFn  func(ctx context.Context) ([]domain.Medicine, error)
	getMedicineFn    func(ctx context.Context, id uuid.UUID) (domain.Medicine, error)
	updateMedicineFn func(ctx context.Context, m domain.Medicine) error
	deleteMedicineFn func(ctx context.Context, id uuid.UUID) error

	insertVitalFn func(ctx context.Context, v domain.VitalReading) error
	listVitalsFn  func(ctx context.Context, limit, offset int) ([]domain.VitalReading, error)

	createContactFn func(ctx context.Context, c domain.Contact) error
	listContactsFn  func(ctx context.Context) ([]domain.Contact, error)
	deleteContactFn func(ctx context.Context, id uuid.UUID) error
}

func (s *mockHandlerStore) CreateMedicine(ctx context.Context, m domain.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createMedicineFn != nil {
		return s.createMedicineFn(ctx, m)
	}
	return nil
}

func (s *mockHandlerStore) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listMedicinesFn != nil {
		return s.listMedicinesFn(ctx)
	}
	return nil, nil
}

func (s *mockHandlerStore) GetMedicine(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getMedicineFn != nil {
		return s.getMedicineFn(ctx, id)
	}
	return domain.Medicine{}, sql.ErrNoRows
}

func (s *mockHandlerStore) UpdateMedicine(ctx context.Context, m domain.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateMedicineFn != nil {
		return s.updateMedicineFn(ctx, m)
	}
	return nil
}

func (s *mockHandlerStore) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteMedicineFn != nil {
		return s.deleteMedicineFn(ctx, id)
	}
	return nil
}

func (s *mockHandlerStore) InsertVitalReading(ctx context.Context, v domain.VitalReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertVitalFn != nil {
		return s.insertVitalFn(ctx, v)
	}
	return nil
}

func (s *mockHandlerStore) ListVitalReadings(ctx context.Context, limit, offset int) ([]domain.VitalReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listVitalsFn != nil {
		return s.listVitalsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *mockHandlerStore) CreateContact(ctx context.Context, c domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createContactFn != nil {
		return s.createContactFn(ctx, c)
	}
	return nil
}

func (s *mockHandlerStore) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listContactsFn != nil {
		return s.listContactsFn(ctx)
	}
	return nil, nil
}

func (s *mockHandlerStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteContactFn != nil {
		return s.deleteContactFn(ctx, id)
	}
	return nil
}

// mockAlertService implements api.AlertService.
type mockAlertService struct {
	mu sync.Mutex

	active []domain.Alert

	acknowledged []domain.OccurrenceKey
	snoozed      []domain.OccurrenceKey
	snoozedFor   time.Duration
	ackErr       error
	snoozeErr    error
}

func (s *mockAlertService) Active() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *mockAlertService) Acknowledge(ctx context.Context, id domain.OccurrenceKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ackErr != nil {
		return s.ackErr
	}
	s.acknowledged = append(s.acknowledged, id)
	return nil
}

func (s *mockAlertService) Snooze(ctx context.Context, id domain.OccurrenceKey, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snoozeErr != nil {
		return s.snoozeErr
	}
	s.snoozed = append(s.snoozed, id)
	s.snoozedFor = d
	return nil
}

// mockHistorySource implements api.HistorySource.
type mockHistorySource struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (s *mockHistorySource) Recent(n int) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.entries) {
		n = len(s.entries)
	}
	return s.entries[:n]
}

func (s *mockHistorySource) Append(ctx context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// mockCaretakerNotifier implements api.CaretakerNotifier.
type mockCaretakerNotifier struct {
	mu       sync.Mutex
	kinds    []string
	messages []string
	err      error
}

func (n *mockCaretakerNotifier) NotifyCaretakers(ctx context.Context, kind, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.kinds = append(n.kinds, kind)
	n.messages = append(n.messages, message)
	return nil
}

type testEnv struct {
	store    *mockHandlerStore
	alerts   *mockAlertService
	history  *mockHistorySource
	notifier *mockCaretakerNotifier
	handler  http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    &mockHandlerStore{},
		alerts:   &mockAlertService{},
		history:  &mockHistorySource{},
		notifier: &mockCaretakerNotifier{},
	}
	h := NewHandler(env.store, env.alerts, env.history, 10*time.Minute).
		WithNotifier(env.notifier)
	env.handler = h.Routes()
	return env
}

func (env *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func TestHealth_Simple(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeResponse[HealthResponse](t, rec)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHealth_VerboseDegraded(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.store, env.alerts, env.history, 10*time.Minute).
		WithHealthChecker(failingPinger{})
	env.handler = h.Routes()

	rec := env.do(t, http.MethodGet, "/health?verbose=true", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	resp := decodeResponse[HealthResponse](t, rec)
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
}

func TestCreateMedicine(t *testing.T) {
	env := newTestEnv()
	var stored domain.Medicine
	env.store.createMedicineFn = func(ctx context.Context, m domain.Medicine) error {
		stored = m
		return nil
	}

	body := `{"name":"Aspirin","dosage":"1 tablet","frequency":"twice-daily","times":["08:00","20:00"]}`
	rec := env.do(t, http.MethodPost, "/medicines", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	resp := decodeResponse[MedicineResponse](t, rec)
	if resp.Name != "Aspirin" {
		t.Errorf("name = %q", resp.Name)
	}
	if len(resp.Times) != 2 || resp.Times[0] != "08:00" || resp.Times[1] != "20:00" {
		t.Errorf("times = %v", resp.Times)
	}
	if stored.ID == uuid.Nil {
		t.Error("stored medicine has no ID")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("stored medicine missing timestamps")
	}
}

func TestCreateMedicine_StartDateLocalMidnight(t *testing.T) {
	env := newTestEnv()
	var stored domain.Medicine
	env.store.createMedicineFn = func(ctx context.Context, m domain.Medicine) error {
		stored = m
		return nil
	}

	body := `{"name":"Aspirin","dosage":"1 tablet","times":["08:00"],"start_date":"2024-03-10"}`
	rec := env.do(t, http.MethodPost, "/medicines", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	// The start date gates against local reminder instants, so it must
	// be midnight in the local zone, not UTC.
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	if !stored.StartDate.Equal(want) {
		t.Errorf("stored start date = %v, want %v", stored.StartDate, want)
	}
	if stored.StartDate.Location() != time.Local {
		t.Errorf("stored start date location = %v, want Local", stored.StartDate.Location())
	}
}

func TestCreateMedicine_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"dosage":"1 tablet","times":["08:00"]}`},
		{"missing dosage", `{"name":"Aspirin","times":["08:00"]}`},
		{"no times", `{"name":"Aspirin","dosage":"1 tablet","times":[]}`},
		{"bad time format", `{"name":"Aspirin","dosage":"1 tablet","times":["8am"]}`},
		{"bad frequency", `{"name":"Aspirin","dosage":"1 tablet","times":["08:00"],"frequency":"hourly"}`},
		{"bad start date", `{"name":"Aspirin","dosage":"1 tablet","times":["08:00"],"start_date":"June 1"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(t, http.MethodPost, "/medicines", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetMedicine_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/medicines/"+uuid.New().String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMedicine_InvalidID(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/medicines/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateMedicine_PreservesCreatedAt(t *testing.T) {
	env := newTestEnv()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	env.store.getMedicineFn = func(ctx context.Context, gotID uuid.UUID) (domain.Medicine, error) {
		return domain.Medicine{
			ID:        id,
			Name:      "Aspirin",
			Dosage:    "1 tablet",
			Times:     []domain.TimeOfDay{{Hour: 8}},
			CreatedAt: created,
			UpdatedAt: created,
		}, nil
	}

	var updated domain.Medicine
	env.store.updateMedicineFn = func(ctx context.Context, m domain.Medicine) error {
		updated = m
		return nil
	}

	body := `{"name":"Aspirin","dosage":"2 tablets","times":["09:00"]}`
	rec := env.do(t, http.MethodPut, "/medicines/"+id.String(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	if !updated.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", updated.CreatedAt, created)
	}
	if updated.Dosage != "2 tablets" {
		t.Errorf("Dosage = %q", updated.Dosage)
	}
	if updated.UpdatedAt.Equal(created) {
		t.Error("UpdatedAt not refreshed")
	}
}

func TestDeleteMedicine(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodDelete, "/medicines/"+uuid.New().String(), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestDeleteMedicine_NotFound(t *testing.T) {
	env := newTestEnv()
	env.store.deleteMedicineFn = func(ctx context.Context, id uuid.UUID) error {
		return sql.ErrNoRows
	}

	rec := env.do(t, http.MethodDelete, "/medicines/"+uuid.New().String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListAlerts(t *testing.T) {
	env := newTestEnv()
	medID := uuid.New()
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	env.alerts.active = []domain.Alert{
		{
			ID:          domain.MakeOccurrenceKey(medID, domain.TimeOfDay{Hour: 8}, "2024-06-15"),
			MedicineID:  medID,
			Message:     "Time to take Aspirin - 1 tablet",
			ScheduledAt: now,
			FiredAt:     now,
			State:       domain.AlertStateActive,
		},
		{
			ID:          domain.MakeOccurrenceKey(medID, domain.TimeOfDay{Hour: 9}, "2024-06-15"),
			MedicineID:  medID,
			Message:     "Time to take Ibuprofen - 2 tablets",
			ScheduledAt: now.Add(time.Hour),
			FiredAt:     now.Add(time.Hour),
			State:       domain.AlertStateSnoozed,
			SnoozeUntil: now.Add(90 * time.Minute),
		},
	}

	rec := env.do(t, http.MethodGet, "/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeResponse[ListAlertsResponse](t, rec)
	if len(resp.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(resp.Alerts))
	}
	if resp.Alerts[0].SnoozeUntil != "" {
		t.Error("active alert should not carry snooze_until")
	}
	if resp.Alerts[1].SnoozeUntil == "" {
		t.Error("snoozed alert should carry snooze_until")
	}
}

func alertPath(key domain.OccurrenceKey, action string) string {
	return "/alerts/" + url.PathEscape(string(key)) + "/" + action
}

func TestAcknowledgeAlert(t *testing.T) {
	env := newTestEnv()
	key := domain.MakeOccurrenceKey(uuid.New(), domain.TimeOfDay{Hour: 8}, "2024-06-15")

	rec := env.do(t, http.MethodPost, alertPath(key, "acknowledge"), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	if len(env.alerts.acknowledged) != 1 || env.alerts.acknowledged[0] != key {
		t.Errorf("acknowledged = %v, want [%s]", env.alerts.acknowledged, key)
	}
}

func TestAcknowledgeAlert_NotFound(t *testing.T) {
	env := newTestEnv()
	env.alerts.ackErr = alert.ErrAlertNotFound
	key := domain.MakeOccurrenceKey(uuid.New(), domain.TimeOfDay{Hour: 8}, "2024-06-15")

	rec := env.do(t, http.MethodPost, alertPath(key, "acknowledge"), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSnoozeAlert_CustomDuration(t *testing.T) {
	env := newTestEnv()
	key := domain.MakeOccurrenceKey(uuid.New(), domain.TimeOfDay{Hour: 8}, "2024-06-15")

	rec := env.do(t, http.MethodPost, alertPath(key, "snooze"), `{"duration":"25m"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	if env.alerts.snoozedFor != 25*time.Minute {
		t.Errorf("snoozed for %v, want 25m", env.alerts.snoozedFor)
	}
}

func TestSnoozeAlert_EmptyBodyUsesDefault(t *testing.T) {
	env := newTestEnv()
	key := domain.MakeOccurrenceKey(uuid.New(), domain.TimeOfDay{Hour: 8}, "2024-06-15")

	rec := env.do(t, http.MethodPost, alertPath(key, "snooze"), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	if env.alerts.snoozedFor != 10*time.Minute {
		t.Errorf("snoozed for %v, want default 10m", env.alerts.snoozedFor)
	}
}

func TestSnoozeAlert_InvalidDuration(t *testing.T) {
	env := newTestEnv()
	key := domain.MakeOccurrenceKey(uuid.New(), domain.TimeOfDay{Hour: 8}, "2024-06-15")

	for _, body := range []string{`{"duration":"soon"}`, `{"duration":"-5m"}`} {
		rec := env.do(t, http.MethodPost, alertPath(key, "snooze"), body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestListHistory(t *testing.T) {
	env := newTestEnv()
	env.history.entries = []domain.HistoryEntry{
		{
			ID:         uuid.New(),
			Message:    "Time to take Aspirin - 1 tablet",
			FiredAt:    time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC),
			Resolution: domain.ResolutionTaken,
			ResolvedAt: time.Date(2024, 6, 15, 8, 5, 0, 0, time.UTC),
		},
	}

	rec := env.do(t, http.MethodGet, "/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeResponse[ListHistoryResponse](t, rec)
	if len(resp.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(resp.Entries))
	}
	if resp.Entries[0].Resolution != "taken" {
		t.Errorf("resolution = %q, want taken", resp.Entries[0].Resolution)
	}
}

func TestCreateVital_WithClassification(t *testing.T) {
	env := newTestEnv()

	body := `{"blood_pressure":"150/95","heart_rate":72}`
	rec := env.do(t, http.MethodPost, "/vitals", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	resp := decodeResponse[VitalResponse](t, rec)
	if resp.Status.BloodPressure != "high" {
		t.Errorf("blood pressure status = %q, want high", resp.Status.BloodPressure)
	}
	if resp.Status.HeartRate != "normal" {
		t.Errorf("heart rate status = %q, want normal", resp.Status.HeartRate)
	}
	if resp.Status.Temperature != "unknown" {
		t.Errorf("temperature status = %q, want unknown", resp.Status.Temperature)
	}
}

func TestCreateVital_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no measurements", `{"notes":"feeling fine"}`},
		{"malformed blood pressure", `{"blood_pressure":"high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(t, http.MethodPost, "/vitals", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateContact(t *testing.T) {
	env := newTestEnv()

	body := `{"name":"Jane Doe","phone":"+1 555 0100","relationship":"daughter"}`
	rec := env.do(t, http.MethodPost, "/contacts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	resp := decodeResponse[ContactResponse](t, rec)
	if resp.Name != "Jane Doe" || resp.Phone != "+1 555 0100" {
		t.Errorf("contact = %+v", resp)
	}
}

func TestCreateContact_RequiredFields(t *testing.T) {
	env := newTestEnv()

	for _, body := range []string{`{"phone":"+1 555 0100"}`, `{"name":"Jane Doe"}`} {
		rec := env.do(t, http.MethodPost, "/contacts", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestDeleteContact(t *testing.T) {
	env := newTestEnv()
	var deleted uuid.UUID
	env.store.deleteContactFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = id
		return nil
	}

	id := uuid.New()
	rec := env.do(t, http.MethodDelete, "/contacts/"+id.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if deleted != id {
		t.Errorf("deleted id = %s, want %s", deleted, id)
	}
}

func TestDeleteContact_NotFound(t *testing.T) {
	env := newTestEnv()
	env.store.deleteContactFn = func(ctx context.Context, id uuid.UUID) error {
		return sql.ErrNoRows
	}

	rec := env.do(t, http.MethodDelete, "/contacts/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateCaretakerAlert_QuickKind(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/caretaker-alerts", `{"kind":"help"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	if len(env.notifier.messages) != 1 || env.notifier.messages[0] != "I need help" {
		t.Errorf("messages = %v, want [I need help]", env.notifier.messages)
	}

	// The sent alert lands in history.
	if env.history.Recent(1)[0].Resolution != domain.ResolutionSent {
		t.Error("caretaker alert not recorded in history as sent")
	}
}

func TestCreateCaretakerAlert_Custom(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/caretaker-alerts", `{"kind":"custom","message":"Please bring groceries"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	if len(env.notifier.messages) != 1 || env.notifier.messages[0] != "Please bring groceries" {
		t.Errorf("messages = %v", env.notifier.messages)
	}
}

func TestCreateCaretakerAlert_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"custom without message", `{"kind":"custom"}`},
		{"unknown kind", `{"kind":"shout"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(t, http.MethodPost, "/caretaker-alerts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}
