package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Clock interface allows for deterministic testing
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Config for telemetry settings
type Config struct {
	BufferSize        int
	MaxRecentErrors   int
	RateWindowSeconds int
}

func DefaultConfig() Config {
	return Config{
		BufferSize:        1000,
		MaxRecentErrors:   50,
		RateWindowSeconds: 10,
	}
}

// Aggregator is the stateful component that folds pipeline events into the
// Snapshot served to the status printer, and mirrors the counters to
// Prometheus when a registerer is supplied.
type Aggregator struct {
	mu    sync.RWMutex
	clock Clock
	cfg   Config

	// Core counters
	recordsAccepted   uint64
	recordsRejected   uint64
	parseFailures     uint64
	cyclesCompleted   uint64
	cyclesSkipped     uint64
	notificationsSent uint64
	errorsTotal       uint64

	// Breakdowns
	rejectionsByReason map[string]uint64
	skipsByReason      map[string]uint64
	errorsByContext    map[string]uint64
	errorsBySeverity   map[ErrorSeverity]uint64
	stationsConnected  map[string]bool

	// Rate calculation ring
	recordTimes []time.Time

	// Cycle latency ring
	cycleLatencies []time.Duration
	latencyIndex   int

	// Recent errors (ring buffer)
	recentErrors []string
	errorIndex   int

	// Prometheus mirrors (nil when metrics are disabled)
	metrics *promMetrics

	eventCh chan TelemetryEvent
	done    chan struct{}
	wg      sync.WaitGroup

	startTime time.Time
}

type promMetrics struct {
	recordsAccepted *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	parseFailures   *prometheus.CounterVec
	cycles          *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	errors          *prometheus.CounterVec
	connected       *prometheus.GaugeVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	m := &promMetrics{
		recordsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_records_accepted_total",
			Help: "Telemetry samples accepted into station windows.",
		}, []string{"station"}),
		recordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_records_rejected_total",
			Help: "Samples rejected by the monotonic watermark.",
		}, []string{"station", "reason"}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_parse_failures_total",
			Help: "Frames dropped because they could not be decoded.",
		}, []string{"station"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_cycles_total",
			Help: "Scheduled cycles by outcome.",
		}, []string{"station", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_notifications_sent_total",
			Help: "Chart notifications delivered downstream.",
		}, []string{"station"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riverwatch_errors_total",
			Help: "Pipeline errors by context.",
		}, []string{"context"}),
		connected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riverwatch_station_connected",
			Help: "Whether the station feed is currently streaming.",
		}, []string{"station"}),
	}
	reg.MustRegister(m.recordsAccepted, m.recordsRejected, m.parseFailures,
		m.cycles, m.notifications, m.errors, m.connected)
	return m
}

// NewAggregator creates a telemetry aggregator. reg may be nil to run
// without Prometheus mirrors (tests, metrics disabled).
func NewAggregator(clock Clock, cfg Config, reg prometheus.Registerer) *Aggregator {
	if clock == nil {
		clock = RealClock{}
	}

	a := &Aggregator{
		clock:              clock,
		cfg:                cfg,
		rejectionsByReason: make(map[string]uint64),
		skipsByReason:      make(map[string]uint64),
		errorsByContext:    make(map[string]uint64),
		errorsBySeverity:   make(map[ErrorSeverity]uint64),
		stationsConnected:  make(map[string]bool),
		recordTimes:        make([]time.Time, 0, cfg.RateWindowSeconds*10),
		cycleLatencies:     make([]time.Duration, 100),
		recentErrors:       make([]string, cfg.MaxRecentErrors),
		eventCh:            make(chan TelemetryEvent, cfg.BufferSize),
		done:               make(chan struct{}),
		startTime:          clock.Now(),
	}
	if reg != nil {
		a.metrics = newPromMetrics(reg)
	}
	return a
}

// Start begins processing telemetry events
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.processEvents(ctx)
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
}

// Publish implements TelemetryPublisher
func (a *Aggregator) Publish(event TelemetryEvent) {
	select {
	case a.eventCh <- event:
	default:
		// Non-blocking send - drop if channel is full so the receive loops
		// are never stalled by telemetry.
	}
}

func (a *Aggregator) processEvents(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case event := <-a.eventCh:
			a.handleEvent(event)
		}
	}
}

func (a *Aggregator) handleEvent(event TelemetryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	switch e := event.(type) {
	case RecordAccepted:
		a.recordsAccepted++
		a.addRecordTime(now)
		if a.metrics != nil {
			a.metrics.recordsAccepted.WithLabelValues(e.Station).Inc()
		}

	case RecordRejected:
		a.recordsRejected++
		a.rejectionsByReason[e.Reason]++
		if a.metrics != nil {
			a.metrics.recordsRejected.WithLabelValues(e.Station, e.Reason).Inc()
		}

	case ParseFailure:
		a.parseFailures++
		a.addRecentError(e.Err.Error())
		if a.metrics != nil {
			a.metrics.parseFailures.WithLabelValues(e.Station).Inc()
		}

	case ConnectionStatusChanged:
		a.stationsConnected[e.Station] = e.Connected
		if a.metrics != nil {
			v := 0.0
			if e.Connected {
				v = 1.0
			}
			a.metrics.connected.WithLabelValues(e.Station).Set(v)
		}

	case CycleCompleted:
		a.cyclesCompleted++
		a.addLatency(e.Latency)
		if e.Notified {
			a.notificationsSent++
		}
		if a.metrics != nil {
			a.metrics.cycles.WithLabelValues(e.Station, "completed").Inc()
			if e.Notified {
				a.metrics.notifications.WithLabelValues(e.Station).Inc()
			}
		}

	case CycleSkipped:
		a.cyclesSkipped++
		a.skipsByReason[e.Reason]++
		if a.metrics != nil {
			a.metrics.cycles.WithLabelValues(e.Station, "skipped_"+e.Reason).Inc()
		}

	case MonitorError:
		a.errorsTotal++
		a.errorsByContext[e.Context]++
		a.errorsBySeverity[e.Severity]++
		a.addRecentError(e.Err.Error())
		if a.metrics != nil {
			a.metrics.errors.WithLabelValues(e.Context).Inc()
		}
	}
}

// Snapshot implements TelemetryReader
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.clock.Now()

	connectedCopy := make(map[string]bool, len(a.stationsConnected))
	for k, v := range a.stationsConnected {
		connectedCopy[k] = v
	}
	rejectionsCopy := make(map[string]uint64, len(a.rejectionsByReason))
	for k, v := range a.rejectionsByReason {
		rejectionsCopy[k] = v
	}
	skipsCopy := make(map[string]uint64, len(a.skipsByReason))
	for k, v := range a.skipsByReason {
		skipsCopy[k] = v
	}
	errorsByContextCopy := make(map[string]uint64, len(a.errorsByContext))
	for k, v := range a.errorsByContext {
		errorsByContextCopy[k] = v
	}
	errorsBySeverityCopy := make(map[ErrorSeverity]uint64, len(a.errorsBySeverity))
	for k, v := range a.errorsBySeverity {
		errorsBySeverityCopy[k] = v
	}

	recentErrors := make([]string, 0)
	if len(a.recentErrors) > 0 {
		for i := 0; i < a.cfg.MaxRecentErrors; i++ {
			idx := (a.errorIndex - i - 1 + len(a.recentErrors)) % len(a.recentErrors)
			if a.recentErrors[idx] != "" {
				recentErrors = append(recentErrors, a.recentErrors[idx])
			}
		}
	}

	avgCycle, maxCycle := a.cycleLatencyMetrics()

	return Snapshot{
		RecordsAccepted:    a.recordsAccepted,
		RecordsRejected:    a.recordsRejected,
		ParseFailures:      a.parseFailures,
		CyclesCompleted:    a.cyclesCompleted,
		CyclesSkipped:      a.cyclesSkipped,
		NotificationsSent:  a.notificationsSent,
		ErrorsTotal:        a.errorsTotal,
		StationsConnected:  connectedCopy,
		RejectionsByReason: rejectionsCopy,
		SkipsByReason:      skipsCopy,
		ErrorsByContext:    errorsByContextCopy,
		ErrorsBySeverity:   errorsBySeverityCopy,
		RecentErrors:       recentErrors,
		RecordsPerSecond:   a.calculateRate(a.recordTimes, now),
		AvgCycleMs:         avgCycle,
		MaxCycleMs:         maxCycle,
		UptimeSeconds:      now.Sub(a.startTime).Seconds(),
		ChannelUtilization: float64(len(a.eventCh)) / float64(cap(a.eventCh)) * 100,
	}
}

func (a *Aggregator) addRecordTime(t time.Time) {
	cutoff := t.Add(-time.Duration(a.cfg.RateWindowSeconds) * time.Second)
	for len(a.recordTimes) > 0 && a.recordTimes[0].Before(cutoff) {
		a.recordTimes = a.recordTimes[1:]
	}
	a.recordTimes = append(a.recordTimes, t)
}

func (a *Aggregator) addLatency(latency time.Duration) {
	a.cycleLatencies[a.latencyIndex] = latency
	a.latencyIndex = (a.latencyIndex + 1) % len(a.cycleLatencies)
}

func (a *Aggregator) addRecentError(err string) {
	if len(a.recentErrors) == 0 {
		return
	}
	a.recentErrors[a.errorIndex] = err
	a.errorIndex = (a.errorIndex + 1) % len(a.recentErrors)
}

func (a *Aggregator) calculateRate(times []time.Time, now time.Time) float64 {
	if len(times) == 0 || a.cfg.RateWindowSeconds == 0 {
		return 0.0
	}
	cutoff := now.Add(-time.Duration(a.cfg.RateWindowSeconds) * time.Second)
	count := 0
	for _, t := range times {
		if t.After(cutoff) {
			count++
		}
	}
	return float64(count) / float64(a.cfg.RateWindowSeconds)
}

func (a *Aggregator) cycleLatencyMetrics() (float64, float64) {
	var sum, max time.Duration
	n := 0
	for _, lat := range a.cycleLatencies {
		if lat > 0 {
			sum += lat
			n++
			if lat > max {
				max = lat
			}
		}
	}
	if n == 0 {
		return 0.0, 0.0
	}
	avg := float64(sum) / float64(n) / float64(time.Millisecond)
	return avg, float64(max) / float64(time.Millisecond)
}
