package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/telemetry"
)

// Scheduler drives the periodic collect → render → deliver cycle for one
// station. The pipeline runs fire-and-forget relative to the ticker: a slow
// render never delays the next tick, and a tick that lands while the
// previous cycle is still in flight is skipped and logged, never queued.
type Scheduler struct {
	code      string
	interval  time.Duration
	maxCycles int // cycles that actually rendered; 0 = unbounded
	grace     time.Duration

	snapshots SnapshotSource
	metaSrc   MetaSource
	gate      *DeliveryGate
	pipeline  *Pipeline

	logger *log.Entry
	emit   func(telemetry.TelemetryEvent)

	inflight atomic.Bool
	wg       sync.WaitGroup
}

// NewScheduler builds the cycle loop for one station.
func NewScheduler(code string, interval, grace time.Duration, maxCycles int,
	snapshots SnapshotSource, metaSrc MetaSource, gate *DeliveryGate, pipeline *Pipeline,
	logger *log.Entry, emit func(telemetry.TelemetryEvent)) *Scheduler {
	return &Scheduler{
		code:      code,
		interval:  interval,
		maxCycles: maxCycles,
		grace:     grace,
		snapshots: snapshots,
		metaSrc:   metaSrc,
		gate:      gate,
		pipeline:  pipeline,
		logger:    logger,
		emit:      emit,
	}
}

// Run ticks until cancellation (or until maxCycles rendered cycles have
// started). On the way out it waits up to the grace period for an in-flight
// cycle to finish.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	started := 0
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-ticker.C:
			if s.tick(ctx) {
				started++
				if s.maxCycles > 0 && started >= s.maxCycles {
					s.logger.WithField("cycles", started).Info("cycle budget exhausted, stopping")
					s.drain()
					return
				}
			}
		}
	}
}

// tick runs one scheduling decision and reports whether a pipeline cycle was
// started.
func (s *Scheduler) tick(ctx context.Context) bool {
	outcome := s.gate.Decide(s.code, s.snapshots.Snapshot())
	if !outcome.ShouldRender {
		s.emit(telemetry.NewCycleSkipped(s.code, outcome.Reason))
		s.logger.WithField("reason", outcome.Reason).Debug("cycle skipped")
		return false
	}

	meta, ok := s.metaSrc.Meta()
	if !ok {
		// Records without identity should not happen; guard anyway.
		s.emit(telemetry.NewCycleSkipped(s.code, ReasonMetadataUnavailable))
		s.logger.Warn("window has data but station metadata is missing, skipping cycle")
		return false
	}

	if !s.inflight.CompareAndSwap(false, true) {
		s.emit(telemetry.NewCycleSkipped(s.code, ReasonCycleInFlight))
		s.logger.Warn("previous cycle still in flight, skipping tick")
		return false
	}

	// The cycle is definitely starting now; only here may the gate learn
	// the new fingerprint, or a skipped tick would swallow the update.
	s.gate.Commit(outcome)

	// Detach the cycle from the scheduler's lifetime so an in-flight
	// render/deliver can finish during shutdown, bounded by one interval.
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer s.inflight.Store(false)
		_ = s.pipeline.Execute(cycleCtx, meta, outcome)
	}()
	return true
}

// drain waits for an in-flight cycle, bounded by the grace period.
func (s *Scheduler) drain() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.grace):
		s.logger.Warn("in-flight cycle did not finish within the grace period")
	}
}
