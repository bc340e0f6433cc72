// Package history keeps the append-only log of finalized alerts.
// The recorder holds a bounded in-memory view for the UI and forwards
// every entry to an optional persistent store. Retention is not the
// recorder's business; see Pruner.
package history

import (
	"context"
	"log"
	"sync"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// DefaultMemoryLimit bounds the in-memory view. Persisted entries are
// unaffected.
const DefaultMemoryLimit = 500

// Store is the optional persistent sink for history entries.
type Store interface {
	InsertHistoryEntry(ctx context.Context, entry domain.HistoryEntry) error
}

// Recorder is an append-only log of finalized alerts.
type Recorder struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry // insertion order, oldest first
	limit   int
	store   Store // optional, nil = memory only
}

// NewRecorder creates a Recorder keeping at most limit entries in
// memory. limit <= 0 uses DefaultMemoryLimit.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Recorder{limit: limit}
}

// WithStore attaches a persistent sink.
func (r *Recorder) WithStore(store Store) *Recorder {
	r.store = store
	return r
}

// Append records an entry. There is no way to delete or reorder
// entries through the Recorder. A failing persistent sink is logged;
// the in-memory view still gets the entry.
func (r *Recorder) Append(ctx context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.InsertHistoryEntry(ctx, entry); err != nil {
			log.Printf("history: persist entry %s failed: %v", entry.ID, err)
		}
	}
	return nil
}

// Preload seeds the in-memory view with persisted entries, newest
// first as returned by the store. Meant for startup, before any
// Append; it does not write to the persistent sink.
func (r *Recorder) Preload(entries []domain.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(entries)
	if n > r.limit {
		n = r.limit
	}
	loaded := make([]domain.HistoryEntry, 0, n+len(r.entries))
	for i := n - 1; i >= 0; i-- {
		loaded = append(loaded, entries[i])
	}
	r.entries = append(loaded, r.entries...)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Recent returns the n most recent entries, most recent first.
func (r *Recorder) Recent(n int) []domain.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]domain.HistoryEntry, n)
	for i := 0; i < n; i++ {
		out[i] = r.entries[len(r.entries)-1-i]
	}
	return out
}

// Len returns the number of entries in the in-memory view.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
