// Package channel provides an in-memory buffered event bus carrying
// alert state transitions from the lifecycle manager to subscribers
// (display layer, caretaker notifier).
package channel

import (
	"context"
	"errors"
	"time"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// ErrBufferFull is returned when an emit cannot complete within the
// emit timeout because the buffer is saturated.
var ErrBufferFull = errors.New("event bus buffer full")

// DefaultEmitTimeout bounds how long Emit blocks on a full buffer. The
// lifecycle manager emits while holding its lock, so this must stay
// short.
const DefaultEmitTimeout = 100 * time.Millisecond

// MetricsSink defines the interface for recording event bus metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	BufferSizeUpdate(size int)
	BufferCapacitySet(capacity int)
	BufferSaturationUpdate(saturation float64)
	EmitError()
}

// Option configures an EventBus.
type Option func(*EventBus)

// WithEmitTimeout overrides the default emit timeout.
func WithEmitTimeout(d time.Duration) Option {
	return func(b *EventBus) {
		b.emitTimeout = d
	}
}

// WithMetrics attaches a metrics sink to the bus.
func WithMetrics(sink MetricsSink) Option {
	return func(b *EventBus) {
		b.metrics = sink
	}
}

type EventBus struct {
	ch          chan domain.AlertEvent
	emitTimeout time.Duration
	metrics     MetricsSink
}

func NewEventBus(buffer int, opts ...Option) *EventBus {
	b := &EventBus{
		ch:          make(chan domain.AlertEvent, buffer),
		emitTimeout: DefaultEmitTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics != nil {
		b.metrics.BufferCapacitySet(buffer)
	}
	return b
}

// Emit delivers an event to the bus. It returns ErrBufferFull if the
// buffer stays saturated past the emit timeout, or the context error if
// ctx is cancelled first. Events are never silently dropped: the caller
// decides how to handle the failure.
func (b *EventBus) Emit(ctx context.Context, event domain.AlertEvent) error {
	timer := time.NewTimer(b.emitTimeout)
	defer timer.Stop()

	select {
	case b.ch <- event:
		b.updateMetrics()
		return nil
	case <-ctx.Done():
		if b.metrics != nil {
			b.metrics.EmitError()
		}
		return ctx.Err()
	case <-timer.C:
		if b.metrics != nil {
			b.metrics.EmitError()
		}
		return ErrBufferFull
	}
}

// Channel returns the read side of the bus.
func (b *EventBus) Channel() <-chan domain.AlertEvent {
	return b.ch
}

func (b *EventBus) updateMetrics() {
	if b.metrics == nil {
		return
	}
	size := len(b.ch)
	capacity := cap(b.ch)
	b.metrics.BufferSizeUpdate(size)
	if capacity > 0 {
		b.metrics.BufferSaturationUpdate(float64(size) / float64(capacity))
	}
}
