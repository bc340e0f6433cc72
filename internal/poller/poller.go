// Package poller drives the reminder core. On a fixed interval it
// snapshots the current schedules, evaluates which occurrences are due
// and hands them to the lifecycle manager.
package poller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/evaluator"
)

// ScheduleSource supplies a read-only snapshot of the current medicine
// schedules, once per tick. The core never mutates it.
type ScheduleSource interface {
	Medicines(ctx context.Context) ([]domain.Medicine, error)
}

// Reconciler merges due occurrences into the live alert set.
type Reconciler interface {
	Reconcile(ctx context.Context, now time.Time, due []domain.Occurrence)
}

// MetricsSink defines the interface for recording poller metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	TickStarted()
	TickCompleted(duration time.Duration, dueCount int, err error)
}

// Config holds poller configuration.
type Config struct {
	// Interval is how often a tick runs, measured from the previous
	// tick's completion. Default: 60 seconds.
	Interval time.Duration

	// Tolerance is the due window handed to the evaluator.
	// Default: 5 minutes.
	Tolerance time.Duration
}

// DefaultConfig returns the default poller configuration.
func DefaultConfig() Config {
	return Config{
		Interval:  60 * time.Second,
		Tolerance: evaluator.DefaultTolerance,
	}
}

// Poller runs the evaluate/reconcile loop.
type Poller struct {
	config  Config
	source  ScheduleSource
	manager Reconciler
	metrics MetricsSink // optional, nil = disabled
	clock   func() time.Time
}

// New creates a Poller.
func New(config Config, source ScheduleSource, manager Reconciler) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultConfig().Tolerance
	}
	return &Poller{
		config:  config,
		source:  source,
		manager: manager,
		clock:   time.Now,
	}
}

// WithMetrics attaches a metrics sink to the poller.
func (p *Poller) WithMetrics(sink MetricsSink) *Poller {
	p.metrics = sink
	return p
}

// Run ticks once immediately, then on the configured interval until ctx
// is cancelled. The timer is armed after each tick completes, so a slow
// tick delays the next one instead of letting calls overlap, and no
// drift accumulates against a fixed epoch. Cancellation guarantees no
// further reconcile calls occur.
func (p *Poller) Run(ctx context.Context) error {
	log.Printf("poller: started, interval=%s tolerance=%s", p.config.Interval, p.config.Tolerance)

	if err := p.tick(ctx); err != nil {
		log.Printf("poller: tick error: %v", err)
	}

	timer := time.NewTimer(p.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("poller: stopped")
			return ctx.Err()
		case <-timer.C:
			if err := p.tick(ctx); err != nil {
				log.Printf("poller: tick error: %v", err)
			}
			timer.Reset(p.config.Interval)
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	if p.metrics != nil {
		p.metrics.TickStarted()
	}
	start := p.clock()

	medicines, err := p.source.Medicines(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.TickCompleted(p.clock().Sub(start), 0, err)
		}
		return fmt.Errorf("load schedules: %w", err)
	}

	now := p.clock()
	due := evaluator.Evaluate(medicines, now, p.config.Tolerance)
	p.manager.Reconcile(ctx, now, due)

	if p.metrics != nil {
		p.metrics.TickCompleted(p.clock().Sub(start), len(due), nil)
	}
	return nil
}
