// Package snapshot holds the latest known-good copy of each upstream data
// category. One writer (the refresh worker) publishes whole snapshots; many
// readers (request handlers) take consistent copies without ever waiting on
// upstream I/O.
package snapshot

import (
	"sync"
	"time"

	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
)

// Snapshot is the published value of one data category plus its refresh
// metadata. FetchedAt is nil until the first successful refresh.
type Snapshot[T any] struct {
	Data          []T        `json:"data"`
	FetchedAt     *time.Time `json:"fetched_at"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
	LastError     string     `json:"last_error,omitempty"`
}

// Stale reports whether the snapshot's age exceeds multiplier refresh
// intervals. A never-populated snapshot is empty, not stale.
func (s Snapshot[T]) Stale(interval time.Duration, multiplier float64, now time.Time) bool {
	if s.FetchedAt == nil || interval <= 0 {
		return false
	}
	limit := time.Duration(float64(interval) * multiplier)
	if limit <= 0 {
		limit = interval
	}
	return now.Sub(*s.FetchedAt) > limit
}

// Cell guards the snapshot of a single category. Data handed to Replace is
// treated as immutable from that point on: the writer publishes a new slice
// each cycle and never mutates a published one, so Get can hand out copies
// of the slice header contents without deep-copying nested values.
type Cell[T any] struct {
	mu   sync.RWMutex
	snap Snapshot[T]
}

// Get returns the current snapshot. The returned Data slice is a copy, so a
// concurrent Replace cannot mutate what the caller already holds.
func (c *Cell[T]) Get() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.snap
	if c.snap.Data != nil {
		out.Data = make([]T, len(c.snap.Data))
		copy(out.Data, c.snap.Data)
	}
	return out
}

// Replace atomically publishes a successful fetch: data, FetchedAt and
// LastAttemptAt move together and any previous error is cleared.
func (c *Cell[T]) Replace(data []T, now time.Time) {
	copied := make([]T, len(data))
	copy(copied, data)

	c.mu.Lock()
	c.snap = Snapshot[T]{
		Data:          copied,
		FetchedAt:     &now,
		LastAttemptAt: &now,
	}
	c.mu.Unlock()
}

// RecordFailure notes a failed fetch attempt. The previously published data
// and FetchedAt stay exactly as they were.
func (c *Cell[T]) RecordFailure(err error, now time.Time) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	c.mu.Lock()
	c.snap.LastError = msg
	c.snap.LastAttemptAt = &now
	c.mu.Unlock()
}

// Store bundles the four category cells. It is the only shared mutable state
// between the refresh worker and the HTTP read path.
type Store struct {
	peakEvents  Cell[domain.PeakEvent]
	customers   Cell[domain.Customer]
	consumption Cell[domain.ConsumptionSummary]
	balances    Cell[domain.BalanceEntry]
}

// NewStore returns a store with all categories in the never-fetched state.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) PeakEvents() *Cell[domain.PeakEvent]           { return &s.peakEvents }
func (s *Store) Customers() *Cell[domain.Customer]             { return &s.customers }
func (s *Store) Consumption() *Cell[domain.ConsumptionSummary] { return &s.consumption }
func (s *Store) Balances() *Cell[domain.BalanceEntry]          { return &s.balances }
