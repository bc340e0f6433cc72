// Package notifier delivers alert notifications to caretakers.
// It consumes alert events from the bus and forwards reminder firings
// and missed doses to a configured caretaker endpoint. Delivery is
// best-effort: the reminder core never depends on it.
package notifier

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

var defaultBackoff = []time.Duration{
	0,
	10 * time.Second,
	time.Minute,
}

const maxAttempts = 3

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, req Request) Result
}

// Breaker guards a flapping caretaker endpoint.
type Breaker interface {
	Allow(endpoint string) error
	RecordSuccess(endpoint string)
	RecordFailure(endpoint string)
}

// AnalyticsSink records dose resolutions. Fire-and-forget; the sink
// handles its own errors.
type AnalyticsSink interface {
	Record(ctx context.Context, medicineID uuid.UUID, resolution domain.Resolution, at time.Time)
}

// MetricsSink defines the interface for recording delivery metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	DeliveryAttemptCompleted(attempt int, statusClass string, duration time.Duration)
	DeliveryOutcome(outcome string)
	EventsInFlightIncr()
	EventsInFlightDecr()
}

// Request is one caretaker delivery.
type Request struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	Payload    Payload
	DeliveryID string
}

// Payload is the caretaker webhook body.
type Payload struct {
	Kind        string `json:"kind"`
	AlertID     string `json:"alert_id,omitempty"`
	Message     string `json:"message"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

// Result is the outcome of one delivery attempt.
type Result struct {
	StatusCode int
	Error      error
	Duration   time.Duration
}

func (r Result) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

func (r Result) IsRetryable() bool {
	if r.Error != nil {
		return true
	}
	if r.StatusCode == 429 {
		return true
	}
	return r.StatusCode >= 500
}

// Config holds notifier configuration.
type Config struct {
	// WebhookURL is the caretaker endpoint. Empty means deliveries are
	// logged only (the out-of-the-box stub).
	WebhookURL string
	Secret     string
	Timeout    time.Duration

	// DrainTimeout bounds post-shutdown processing of buffered events.
	DrainTimeout time.Duration
}

// Notifier consumes alert events and notifies caretakers.
type Notifier struct {
	config    Config
	sender    Sender
	breaker   Breaker       // optional, nil = disabled
	analytics AnalyticsSink // optional, nil = disabled
	metrics   MetricsSink   // optional, nil = disabled
	backoff   []time.Duration
	clock     func() time.Time
}

func New(config Config, sender Sender) *Notifier {
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = 30 * time.Second
	}
	return &Notifier{
		config:  config,
		sender:  sender,
		backoff: defaultBackoff,
		clock:   time.Now,
	}
}

func (n *Notifier) WithBreaker(b Breaker) *Notifier {
	n.breaker = b
	return n
}

func (n *Notifier) WithAnalytics(sink AnalyticsSink) *Notifier {
	n.analytics = sink
	return n
}

// WithMetrics attaches a metrics sink to the notifier.
func (n *Notifier) WithMetrics(sink MetricsSink) *Notifier {
	n.metrics = sink
	return n
}

// Run processes events from the channel until ctx is cancelled, then
// drains remaining buffered events with a timeout.
func (n *Notifier) Run(ctx context.Context, ch <-chan domain.AlertEvent) {
	for {
		select {
		case <-ctx.Done():
			n.drain(ch)
			return
		case event := <-ch:
			if err := n.Handle(ctx, event); err != nil {
				log.Printf("notifier: error: %v", err)
			}
		}
	}
}

func (n *Notifier) drain(ch <-chan domain.AlertEvent) {
	drainCtx, cancel := context.WithTimeout(context.Background(), n.config.DrainTimeout)
	defer cancel()

	count := 0
	for {
		select {
		case <-drainCtx.Done():
			if count > 0 {
				log.Printf("notifier: drain timeout, processed %d events", count)
			}
			return
		case event, ok := <-ch:
			if !ok {
				log.Printf("notifier: drain complete, processed %d events", count)
				return
			}
			if err := n.Handle(drainCtx, event); err != nil {
				log.Printf("notifier: drain error: %v", err)
			}
			count++
		default:
			if count > 0 {
				log.Printf("notifier: drain complete, processed %d events", count)
			}
			return
		}
	}
}

// Handle processes one alert event. Resolutions feed the adherence
// analytics; firings and missed doses additionally go out to the
// caretaker endpoint.
func (n *Notifier) Handle(ctx context.Context, event domain.AlertEvent) error {
	n.recordAnalytics(ctx, event)

	var kind string
	switch event.Type {
	case domain.AlertEventFired:
		kind = "reminder"
	case domain.AlertEventExpired:
		kind = "missed-dose"
	default:
		// Snoozes, resurfacings and acknowledgments stay on-device.
		return nil
	}

	payload := Payload{
		Kind:        kind,
		AlertID:     string(event.Alert.ID),
		Message:     event.Alert.Message,
		ScheduledAt: event.Alert.ScheduledAt.Format(time.RFC3339),
		OccurredAt:  event.At.Format(time.RFC3339),
	}
	return n.deliver(ctx, payload)
}

// NotifyCaretakers sends a direct message (quick or custom alert) to
// the caretaker endpoint, outside the reminder flow.
func (n *Notifier) NotifyCaretakers(ctx context.Context, kind, message string) error {
	payload := Payload{
		Kind:       kind,
		Message:    message,
		OccurredAt: n.clock().Format(time.RFC3339),
	}
	return n.deliver(ctx, payload)
}

func (n *Notifier) deliver(ctx context.Context, payload Payload) error {
	if n.config.WebhookURL == "" {
		// Outbound channels (phone/SMS/email) are stubbed; log and move on.
		log.Printf("notifier: (stub) caretaker notification kind=%s message=%q", payload.Kind, payload.Message)
		return nil
	}

	if n.metrics != nil {
		n.metrics.EventsInFlightIncr()
		defer n.metrics.EventsInFlightDecr()
	}

	if n.breaker != nil {
		if err := n.breaker.Allow(n.config.WebhookURL); err != nil {
			log.Printf("notifier: endpoint circuit open, dropping kind=%s", payload.Kind)
			if n.metrics != nil {
				n.metrics.DeliveryOutcome("dropped")
			}
			return nil
		}
	}

	req := Request{
		URL:     n.config.WebhookURL,
		Secret:  n.config.Secret,
		Timeout: n.config.Timeout,
		Payload: payload,
	}

	var lastResult Result

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			idx := attempt - 1
			if idx >= len(n.backoff) {
				idx = len(n.backoff) - 1
			}
			backoff := n.backoff[idx]

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				return ctx.Err()
			case <-timer.C:
			}
		}

		req.DeliveryID = uuid.New().String()

		result := n.sender.Send(ctx, req)
		lastResult = result

		if n.metrics != nil {
			statusClass := classifyStatusForMetrics(result.StatusCode, result.Error)
			n.metrics.DeliveryAttemptCompleted(attempt, statusClass, result.Duration)
		}

		if result.IsSuccess() {
			log.Printf("notifier: delivered kind=%s attempt=%d", payload.Kind, attempt)
			if n.breaker != nil {
				n.breaker.RecordSuccess(n.config.WebhookURL)
			}
			if n.metrics != nil {
				n.metrics.DeliveryOutcome("success")
			}
			return nil
		}

		if n.breaker != nil {
			n.breaker.RecordFailure(n.config.WebhookURL)
		}

		if !result.IsRetryable() {
			log.Printf("notifier: kind=%s non-retryable status=%d", payload.Kind, result.StatusCode)
			break
		}

		log.Printf("notifier: kind=%s attempt=%d failed status=%d err=%v", payload.Kind, attempt, result.StatusCode, result.Error)
	}

	// Best-effort delivery: give up after the retry budget, the core
	// does not surface this to the user.
	log.Printf("notifier: kind=%s delivery failed status=%d err=%v", payload.Kind, lastResult.StatusCode, lastResult.Error)
	if n.metrics != nil {
		n.metrics.DeliveryOutcome("failed")
	}
	return nil
}

func (n *Notifier) recordAnalytics(ctx context.Context, event domain.AlertEvent) {
	if n.analytics == nil {
		return
	}
	switch event.Type {
	case domain.AlertEventAcknowledged:
		n.analytics.Record(ctx, event.Alert.MedicineID, domain.ResolutionTaken, event.At)
	case domain.AlertEventExpired:
		n.analytics.Record(ctx, event.Alert.MedicineID, domain.ResolutionMissed, event.At)
	}
}

// classifyStatusForMetrics maps an HTTP status code and error to a metrics status class.
// Uses bounded cardinality: 2xx, 4xx, 5xx, timeout, connection_error, other_error.
func classifyStatusForMetrics(statusCode int, err error) string {
	if err != nil {
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
			return "timeout"
		}
		if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") ||
			strings.Contains(errStr, "network is unreachable") || strings.Contains(errStr, "dial") {
			return "connection_error"
		}
		return "other_error"
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other_error"
	}
}
