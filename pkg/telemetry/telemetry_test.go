package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeClock provides deterministic time for tests
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestAggregator(reg prometheus.Registerer) (*Aggregator, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
	return NewAggregator(clock, DefaultConfig(), reg), clock
}

func TestAggregator_CountsCoreEvents(t *testing.T) {
	a, _ := newTestAggregator(nil)

	a.handleEvent(NewRecordAccepted("703"))
	a.handleEvent(NewRecordAccepted("703"))
	a.handleEvent(NewRecordRejected("703", "rejected_duplicate"))
	a.handleEvent(NewParseFailure("703", errors.New("bad frame")))
	a.handleEvent(NewCycleCompleted("703", true, 25*time.Millisecond))
	a.handleEvent(NewCycleSkipped("703", "unchanged"))
	a.handleEvent(NewMonitorError(errors.New("boom"), "upload", ErrorSeverityWarning))

	snap := a.Snapshot()
	if snap.RecordsAccepted != 2 {
		t.Fatalf("accepted=%d", snap.RecordsAccepted)
	}
	if snap.RecordsRejected != 1 || snap.RejectionsByReason["rejected_duplicate"] != 1 {
		t.Fatalf("rejections=%d byReason=%v", snap.RecordsRejected, snap.RejectionsByReason)
	}
	if snap.ParseFailures != 1 {
		t.Fatalf("parseFailures=%d", snap.ParseFailures)
	}
	if snap.CyclesCompleted != 1 || snap.NotificationsSent != 1 {
		t.Fatalf("cycles=%d notified=%d", snap.CyclesCompleted, snap.NotificationsSent)
	}
	if snap.CyclesSkipped != 1 || snap.SkipsByReason["unchanged"] != 1 {
		t.Fatalf("skips=%d byReason=%v", snap.CyclesSkipped, snap.SkipsByReason)
	}
	if snap.ErrorsTotal != 1 || snap.ErrorsByContext["upload"] != 1 {
		t.Fatalf("errors=%d byContext=%v", snap.ErrorsTotal, snap.ErrorsByContext)
	}
	if len(snap.RecentErrors) != 2 {
		t.Fatalf("recent errors: %v", snap.RecentErrors)
	}
}

func TestAggregator_ConnectionStatusPerStation(t *testing.T) {
	a, _ := newTestAggregator(nil)

	a.handleEvent(NewConnectionStatusChanged("703", true))
	a.handleEvent(NewConnectionStatusChanged("704", false))

	snap := a.Snapshot()
	if !snap.StationsConnected["703"] || snap.StationsConnected["704"] {
		t.Fatalf("unexpected connection map: %v", snap.StationsConnected)
	}
}

func TestAggregator_RateUsesWindow(t *testing.T) {
	a, clock := newTestAggregator(nil)

	for i := 0; i < 20; i++ {
		a.handleEvent(NewRecordAccepted("703"))
	}
	snap := a.Snapshot()
	if snap.RecordsPerSecond != 2.0 { // 20 records over a 10s window
		t.Fatalf("rate=%v", snap.RecordsPerSecond)
	}

	// After the window passes, the rate decays to zero.
	clock.Advance(time.Duration(a.cfg.RateWindowSeconds+1) * time.Second)
	snap = a.Snapshot()
	if snap.RecordsPerSecond != 0.0 {
		t.Fatalf("rate after window=%v", snap.RecordsPerSecond)
	}
}

func TestAggregator_StartStopDrainsChannel(t *testing.T) {
	a, _ := newTestAggregator(nil)
	a.Start(context.Background())

	a.Publish(NewRecordAccepted("703"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.Snapshot().RecordsAccepted == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	a.Stop()

	if got := a.Snapshot().RecordsAccepted; got != 1 {
		t.Fatalf("accepted=%d", got)
	}
}

func TestAggregator_PublishNeverBlocks(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
	cfg := DefaultConfig()
	cfg.BufferSize = 1
	a := NewAggregator(clock, cfg, nil)
	// No consumer running; the second publish must drop, not hang.
	a.Publish(NewRecordAccepted("703"))
	a.Publish(NewRecordAccepted("703"))
}

func TestAggregator_PrometheusMirrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _ := newTestAggregator(reg)

	a.handleEvent(NewRecordAccepted("703"))
	a.handleEvent(NewRecordRejected("703", "rejected_out_of_order"))
	a.handleEvent(NewConnectionStatusChanged("703", true))
	a.handleEvent(NewCycleCompleted("703", false, time.Millisecond))

	if got := promtestutil.ToFloat64(a.metrics.recordsAccepted.WithLabelValues("703")); got != 1 {
		t.Fatalf("records_accepted=%v", got)
	}
	if got := promtestutil.ToFloat64(a.metrics.recordsRejected.WithLabelValues("703", "rejected_out_of_order")); got != 1 {
		t.Fatalf("records_rejected=%v", got)
	}
	if got := promtestutil.ToFloat64(a.metrics.connected.WithLabelValues("703")); got != 1 {
		t.Fatalf("connected=%v", got)
	}
	if got := promtestutil.ToFloat64(a.metrics.cycles.WithLabelValues("703", "completed")); got != 1 {
		t.Fatalf("cycles=%v", got)
	}
}
