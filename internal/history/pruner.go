package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneStore deletes persisted history entries older than a cutoff.
type PruneStore interface {
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrunerConfig holds retention settings.
type PrunerConfig struct {
	// Schedule is a standard 5-field cron expression.
	// Default: "0 3 * * *" (daily at 03:00).
	Schedule string

	// Retention is how long persisted entries are kept.
	// Default: 90 days.
	Retention time.Duration

	// OpTimeout bounds each delete. Default: 30 seconds.
	OpTimeout time.Duration
}

// DefaultPrunerConfig returns the default retention settings.
func DefaultPrunerConfig() PrunerConfig {
	return PrunerConfig{
		Schedule:  "0 3 * * *",
		Retention: 90 * 24 * time.Hour,
		OpTimeout: 30 * time.Second,
	}
}

// Pruner applies the external retention policy to the persistent
// history store on a cron schedule. It never touches the Recorder's
// in-memory view.
type Pruner struct {
	config PrunerConfig
	store  PruneStore
	runner *cron.Cron
	clock  func() time.Time
}

// NewPruner creates a Pruner. Start must be called to arm the schedule.
func NewPruner(config PrunerConfig, store PruneStore) (*Pruner, error) {
	defaults := DefaultPrunerConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}
	if config.OpTimeout <= 0 {
		config.OpTimeout = defaults.OpTimeout
	}

	p := &Pruner{
		config: config,
		store:  store,
		runner: cron.New(),
		clock:  time.Now,
	}
	if _, err := p.runner.AddFunc(config.Schedule, p.prune); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", config.Schedule, err)
	}
	return p, nil
}

// Start arms the cron schedule in its own goroutine.
func (p *Pruner) Start() {
	p.runner.Start()
	log.Printf("history: pruner started (schedule=%q, retention=%s)", p.config.Schedule, p.config.Retention)
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.runner.Stop().Done()
	log.Println("history: pruner stopped")
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.OpTimeout)
	defer cancel()

	cutoff := p.clock().Add(-p.config.Retention)
	deleted, err := p.store.DeleteHistoryBefore(ctx, cutoff)
	if err != nil {
		log.Printf("history: prune failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("history: pruned %d entries older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}
