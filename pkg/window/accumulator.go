package window

import (
	"sync"
	"time"

	"riverwatch/pkg/station"
)

// AcceptResult classifies the outcome of offering one record to the window.
type AcceptResult int

const (
	Accepted AcceptResult = iota
	RejectedDuplicate
	RejectedOutOfOrder
)

func (r AcceptResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedDuplicate:
		return "rejected_duplicate"
	case RejectedOutOfOrder:
		return "rejected_out_of_order"
	default:
		return "unknown"
	}
}

// Accumulator keeps the bounded, time-ordered recent history for one station.
// It is a streaming monotonic-watermark filter: a record at or before the
// current high-water timestamp is rejected, which is exactly how re-delivered
// samples after a reconnect get deduplicated. Reconnects never clear it.
//
// The receive loop and the cycle scheduler touch it from different
// goroutines, hence the mutex.
type Accumulator struct {
	mu       sync.Mutex
	capacity int
	records  []station.Record
	lastTS   time.Time
}

// NewAccumulator creates an empty window holding at most capacity samples.
func NewAccumulator(capacity int) *Accumulator {
	if capacity < 1 {
		capacity = 1
	}
	return &Accumulator{capacity: capacity}
}

// Accept offers one record. Records must arrive with strictly increasing
// timestamps; anything at or behind the watermark is rejected unchanged.
// On overflow the oldest sample is evicted.
func (a *Accumulator) Accept(rec station.Record) AcceptResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.records) > 0 {
		if rec.Time.Equal(a.lastTS) {
			return RejectedDuplicate
		}
		if rec.Time.Before(a.lastTS) {
			return RejectedOutOfOrder
		}
	}

	a.records = append(a.records, rec)
	if len(a.records) > a.capacity {
		a.records = append(a.records[:0], a.records[len(a.records)-a.capacity:]...)
	}
	a.lastTS = rec.Time
	return Accepted
}

// Snapshot returns a copy of the window, oldest first. The copy is safe to
// hand to a renderer while the receive loop keeps appending.
func (a *Accumulator) Snapshot() []station.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]station.Record, len(a.records))
	copy(out, a.records)
	return out
}

// Len reports the current number of retained samples.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}
