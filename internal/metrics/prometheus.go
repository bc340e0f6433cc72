package metrics

import (
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Poller metrics
	ticksTotal        prometheus.Counter
	tickErrorsTotal   prometheus.Counter
	dueRemindersTotal prometheus.Counter
	tickDuration      prometheus.Histogram

	// Alert lifecycle metrics
	alertTransitionsTotal *prometheus.CounterVec
	activeAlerts          prometheus.Gauge

	// Delivery metrics
	deliveryAttemptsTotal *prometheus.CounterVec
	deliveryOutcomesTotal *prometheus.CounterVec
	webhookDuration       prometheus.Histogram
	eventsInFlight        prometheus.Gauge

	// EventBus metrics
	bufferSize       prometheus.Gauge
	bufferCapacity   prometheus.Gauge
	bufferSaturation prometheus.Gauge
	emitErrorsTotal  prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initPollerMetrics(reg)
	s.initAlertMetrics(reg)
	s.initDeliveryMetrics(reg)
	s.initEventBusMetrics(reg)
	return s
}

func (s *PrometheusSink) initPollerMetrics(reg prometheus.Registerer) {
	s.ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "healthalert_poller_ticks_total",
		Help: "Total number of poll ticks processed.",
	})
	s.tickErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "healthalert_poller_tick_errors_total",
		Help: "Total number of poll tick errors.",
	})
	s.dueRemindersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "healthalert_poller_due_reminders_total",
		Help: "Total number of due reminder occurrences found.",
	})
	s.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthalert_poller_tick_duration_seconds",
		Help:    "Duration of each poll tick in seconds.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	s.register(reg, s.ticksTotal, "healthalert_poller_ticks_total")
	s.register(reg, s.tickErrorsTotal, "healthalert_poller_tick_errors_total")
	s.register(reg, s.dueRemindersTotal, "healthalert_poller_due_reminders_total")
	s.register(reg, s.tickDuration, "healthalert_poller_tick_duration_seconds")
}

func (s *PrometheusSink) initAlertMetrics(reg prometheus.Registerer) {
	s.alertTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "healthalert_alert_transitions_total",
		Help: "Total number of alert state transitions.",
	}, []string{"transition"})

	s.activeAlerts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthalert_alerts_active",
		Help: "Number of alerts currently live (active or snoozed).",
	})

	s.register(reg, s.alertTransitionsTotal, "healthalert_alert_transitions_total")
	s.register(reg, s.activeAlerts, "healthalert_alerts_active")
}

func (s *PrometheusSink) initDeliveryMetrics(reg prometheus.Registerer) {
	s.deliveryAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "healthalert_notifier_delivery_attempts_total",
		Help: "Total number of caretaker webhook delivery attempts.",
	}, []string{"attempt", "status_class"})

	s.deliveryOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "healthalert_notifier_delivery_outcomes_total",
		Help: "Total number of final delivery outcomes per notification.",
	}, []string{"outcome"})

	s.webhookDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthalert_notifier_webhook_duration_seconds",
		Help:    "Webhook request latency in seconds (excludes backoff wait).",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	s.eventsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthalert_notifier_events_in_flight",
		Help: "Number of notifications currently being processed.",
	})

	s.register(reg, s.deliveryAttemptsTotal, "healthalert_notifier_delivery_attempts_total")
	s.register(reg, s.deliveryOutcomesTotal, "healthalert_notifier_delivery_outcomes_total")
	s.register(reg, s.webhookDuration, "healthalert_notifier_webhook_duration_seconds")
	s.register(reg, s.eventsInFlight, "healthalert_notifier_events_in_flight")
}

func (s *PrometheusSink) initEventBusMetrics(reg prometheus.Registerer) {
	s.bufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthalert_eventbus_buffer_size",
		Help: "Current number of events in the event bus buffer.",
	})
	s.bufferCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthalert_eventbus_buffer_capacity",
		Help: "Configured capacity of the event bus buffer.",
	})
	s.bufferSaturation = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthalert_eventbus_buffer_saturation",
		Help: "Fraction of the event bus buffer in use (0 to 1).",
	})
	s.emitErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "healthalert_eventbus_emit_errors_total",
		Help: "Total number of emit errors (buffer full).",
	})

	s.register(reg, s.bufferSize, "healthalert_eventbus_buffer_size")
	s.register(reg, s.bufferCapacity, "healthalert_eventbus_buffer_capacity")
	s.register(reg, s.bufferSaturation, "healthalert_eventbus_buffer_saturation")
	s.register(reg, s.emitErrorsTotal, "healthalert_eventbus_emit_errors_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

// Poller metrics implementation

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) TickCompleted(duration time.Duration, dueCount int, err error) {
	s.tickDuration.Observe(duration.Seconds())
	if dueCount > 0 {
		s.dueRemindersTotal.Add(float64(dueCount))
	}
	if err != nil {
		s.tickErrorsTotal.Inc()
	}
}

// Alert lifecycle metrics implementation

func (s *PrometheusSink) AlertTransition(transition string) {
	s.alertTransitionsTotal.WithLabelValues(transition).Inc()
}

func (s *PrometheusSink) ActiveAlertsUpdate(count int) {
	s.activeAlerts.Set(float64(count))
}

// Delivery metrics implementation

func (s *PrometheusSink) DeliveryAttemptCompleted(attempt int, statusClass string, duration time.Duration) {
	s.deliveryAttemptsTotal.WithLabelValues(strconv.Itoa(attempt), statusClass).Inc()
	s.webhookDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) DeliveryOutcome(outcome string) {
	s.deliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) EventsInFlightIncr() {
	s.eventsInFlight.Inc()
}

func (s *PrometheusSink) EventsInFlightDecr() {
	s.eventsInFlight.Dec()
}

// EventBus metrics implementation

func (s *PrometheusSink) BufferSizeUpdate(size int) {
	s.bufferSize.Set(float64(size))
}

func (s *PrometheusSink) BufferCapacitySet(capacity int) {
	s.bufferCapacity.Set(float64(capacity))
}

func (s *PrometheusSink) BufferSaturationUpdate(saturation float64) {
	s.bufferSaturation.Set(saturation)
}

func (s *PrometheusSink) EmitError() {
	s.emitErrorsTotal.Inc()
}
