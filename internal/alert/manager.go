// Package alert owns the live alert set. The Manager is the single
// writer of alert state: the poller feeds it due occurrences and user
// actions arrive through Acknowledge/Snooze/Expire. A mutex serializes
// the two, so an action applied between ticks is always visible to the
// next reconcile.
package alert

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// ErrAlertNotFound is returned for actions on unknown alert ids. It is
// never fatal; callers log and move on.
var ErrAlertNotFound = errors.New("alert not found")

// EventEmitter receives a change notification for every state
// transition. This is the manager's only coupling to the display layer.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.AlertEvent) error
}

// HistoryAppender records finalized alerts. Appends are best-effort:
// a failing history sink never blocks a state transition.
type HistoryAppender interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
}

// MetricsSink defines the interface for recording alert metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	AlertTransition(transition string)
	ActiveAlertsUpdate(count int)
}

// Manager owns the occurrence-key -> alert mapping.
type Manager struct {
	mu sync.Mutex

	alerts        map[domain.OccurrenceKey]*domain.Alert
	resolved      map[domain.OccurrenceKey]struct{} // terminal keys for resolvedDate
	resolvedDate  string
	lastReconcile time.Time

	emitter EventEmitter
	history HistoryAppender
	metrics MetricsSink // optional, nil = disabled
	clock   func() time.Time
}

// New creates a Manager. Both collaborators are required.
func New(emitter EventEmitter, history HistoryAppender) *Manager {
	return &Manager{
		alerts:   make(map[domain.OccurrenceKey]*domain.Alert),
		resolved: make(map[domain.OccurrenceKey]struct{}),
		emitter:  emitter,
		history:  history,
		clock:    time.Now,
	}
}

// WithMetrics attaches a metrics sink to the manager.
func (m *Manager) WithMetrics(sink MetricsSink) *Manager {
	m.metrics = sink
	return m
}

// Reconcile merges the due occurrences into the live alert set.
// It is idempotent on occurrence key: repeated calls with the same due
// set neither duplicate alerts nor reset their state.
//
// Order of work: resurface elapsed snoozes, expire alerts left over
// from previous days, then fire new occurrences. Occurrences whose key
// was already acknowledged or expired today are skipped.
func (m *Manager) Reconcile(ctx context.Context, now time.Time, due []domain.Occurrence) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastReconcile.IsZero() && now.Before(m.lastReconcile) {
		// Clock moved backward. Suppress all transitions for this tick
		// rather than risk re-firing resolved occurrences; state is
		// reconciled again once the clock catches up.
		log.Printf("alert: clock skew detected (now=%s before last reconcile=%s), tick suppressed",
			now.Format(time.RFC3339), m.lastReconcile.Format(time.RFC3339))
		return
	}
	m.lastReconcile = now

	today := now.Format(domain.DateLayout)
	if m.resolvedDate != today {
		m.resolved = make(map[domain.OccurrenceKey]struct{})
		m.resolvedDate = today
	}

	for key, a := range m.alerts {
		if a.State == domain.AlertStateSnoozed && !now.Before(a.SnoozeUntil) {
			a.State = domain.AlertStateActive
			a.SnoozeUntil = time.Time{}
			m.emit(ctx, domain.AlertEvent{Type: domain.AlertEventResurfaced, Alert: *a, At: now})
			log.Printf("alert: resurfaced key=%s", key)
		}
	}

	for key, a := range m.alerts {
		if a.ScheduledAt.Format(domain.DateLayout) != today {
			m.expireLocked(ctx, key, a, now)
		}
	}

	for _, occ := range due {
		key := occ.Key()
		if _, live := m.alerts[key]; live {
			continue
		}
		if _, done := m.resolved[key]; done {
			continue
		}

		a := &domain.Alert{
			ID:          key,
			MedicineID:  occ.MedicineID,
			Message:     occ.Message,
			ScheduledAt: occ.ScheduledAt,
			FiredAt:     now,
			State:       domain.AlertStateActive,
		}
		m.alerts[key] = a
		m.transition("fired")
		m.emit(ctx, domain.AlertEvent{Type: domain.AlertEventFired, Alert: *a, At: now})
		log.Printf("alert: fired key=%s scheduled_at=%s", key, occ.ScheduledAt.Format(time.RFC3339))
	}

	m.updateActiveCount()
}

// Acknowledge marks an alert as taken. The occurrence key stays
// resolved for the rest of the day, so later reconciles cannot
// recreate it.
func (m *Manager) Acknowledge(ctx context.Context, id domain.OccurrenceKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}
	now := m.clock()

	a.State = domain.AlertStateAcknowledged
	a.SnoozeUntil = time.Time{}
	delete(m.alerts, id)
	m.resolved[id] = struct{}{}

	m.appendHistory(ctx, domain.HistoryEntry{
		ID:            uuid.New(),
		OccurrenceKey: id,
		Message:       a.Message,
		FiredAt:       a.FiredAt,
		Resolution:    domain.ResolutionTaken,
		ResolvedAt:    now,
	})
	m.transition("acknowledged")
	m.emit(ctx, domain.AlertEvent{Type: domain.AlertEventAcknowledged, Alert: *a, At: now})
	m.updateActiveCount()

	log.Printf("alert: acknowledged key=%s", id)
	return nil
}

// Snooze hides an alert until now+d. The next reconcile after the
// snooze elapses resurfaces the same alert; it is never treated as a
// new occurrence. Snoozing an already snoozed alert extends it.
func (m *Manager) Snooze(ctx context.Context, id domain.OccurrenceKey, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}
	now := m.clock()

	a.State = domain.AlertStateSnoozed
	a.SnoozeUntil = now.Add(d)

	m.transition("snoozed")
	m.emit(ctx, domain.AlertEvent{Type: domain.AlertEventSnoozed, Alert: *a, At: now})
	m.updateActiveCount()

	log.Printf("alert: snoozed key=%s until=%s", id, a.SnoozeUntil.Format(time.RFC3339))
	return nil
}

// Expire finalizes an alert as missed.
func (m *Manager) Expire(ctx context.Context, id domain.OccurrenceKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}
	m.expireLocked(ctx, id, a, m.clock())
	m.updateActiveCount()
	return nil
}

func (m *Manager) expireLocked(ctx context.Context, id domain.OccurrenceKey, a *domain.Alert, now time.Time) {
	a.State = domain.AlertStateExpired
	a.SnoozeUntil = time.Time{}
	delete(m.alerts, id)
	m.resolved[id] = struct{}{}

	m.appendHistory(ctx, domain.HistoryEntry{
		ID:            uuid.New(),
		OccurrenceKey: id,
		Message:       a.Message,
		FiredAt:       a.FiredAt,
		Resolution:    domain.ResolutionMissed,
		ResolvedAt:    now,
	})
	m.transition("expired")
	m.emit(ctx, domain.AlertEvent{Type: domain.AlertEventExpired, Alert: *a, At: now})

	log.Printf("alert: expired key=%s", id)
}

// Active returns the currently due alerts, oldest scheduled first.
// Snoozed alerts are hidden until they resurface.
func (m *Manager) Active() []domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if a.State == domain.AlertStateActive {
			out = append(out, *a)
		}
	}
	sortAlerts(out)
	return out
}

// Snapshot returns every live alert, snoozed included, plus the keys
// resolved today. Used by the persistence sink so a restart does not
// re-fire occurrences already acknowledged.
func (m *Manager) Snapshot() ([]domain.Alert, []domain.OccurrenceKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alerts := make([]domain.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		alerts = append(alerts, *a)
	}
	sortAlerts(alerts)

	keys := make([]domain.OccurrenceKey, 0, len(m.resolved))
	for k := range m.resolved {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return alerts, keys
}

// Restore loads persisted state on startup. Resolved keys apply to
// now's calendar date; alerts from previous days are expired by the
// first reconcile.
func (m *Manager) Restore(alerts []domain.Alert, resolved []domain.OccurrenceKey, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range alerts {
		a := alerts[i]
		m.alerts[a.ID] = &a
	}
	m.resolvedDate = now.Format(domain.DateLayout)
	for _, k := range resolved {
		m.resolved[k] = struct{}{}
	}
	m.updateActiveCount()

	log.Printf("alert: restored %d alerts, %d resolved keys", len(alerts), len(resolved))
}

func (m *Manager) emit(ctx context.Context, event domain.AlertEvent) {
	if err := m.emitter.Emit(ctx, event); err != nil {
		log.Printf("alert: emit %s key=%s failed: %v", event.Type, event.Alert.ID, err)
	}
}

func (m *Manager) appendHistory(ctx context.Context, entry domain.HistoryEntry) {
	if err := m.history.Append(ctx, entry); err != nil {
		log.Printf("alert: history append key=%s failed: %v", entry.OccurrenceKey, err)
	}
}

func (m *Manager) transition(name string) {
	if m.metrics != nil {
		m.metrics.AlertTransition(name)
	}
}

func (m *Manager) updateActiveCount() {
	if m.metrics == nil {
		return
	}
	count := 0
	for _, a := range m.alerts {
		if a.State == domain.AlertStateActive {
			count++
		}
	}
	m.metrics.ActiveAlertsUpdate(count)
}

func sortAlerts(alerts []domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].ScheduledAt.Equal(alerts[j].ScheduledAt) {
			return alerts[i].ID < alerts[j].ID
		}
		return alerts[i].ScheduledAt.Before(alerts[j].ScheduledAt)
	})
}
