package monitor

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/config"
	"riverwatch/pkg/telemetry"
	"riverwatch/pkg/window"
)

// Collaborators are the external render/upload/notify endpoints a cycle
// hands off to.
type Collaborators struct {
	Renderer Renderer
	Uploader Uploader
	Notifier Notifier
}

// StationMonitor runs everything one station needs: its connection manager,
// its window, its delivery gate, and its cycle scheduler. Stations share
// nothing mutable, so one station failing hard never touches the others.
type StationMonitor struct {
	code   string
	conn   *ConnectionManager
	sched  *Scheduler
	logger *log.Entry
}

// NewStationMonitor wires the full per-station pipeline from configuration.
func NewStationMonitor(cfg *config.Config, code string, dialer StreamDialer,
	collab Collaborators, pub telemetry.TelemetryPublisher, logger *log.Entry) *StationMonitor {

	if pub == nil {
		pub = telemetry.NewNoopPublisher()
	}
	emit := pub.Publish

	acc := window.NewAccumulator(cfg.Window.MaxSamples)
	conn := NewConnectionManager(code, cfg.StationURL(code), dialer, acc, cfg.Network, logger, emit)
	gate := NewDeliveryGate(cfg.Line.Enabled)
	pipeline := NewPipeline(collab.Renderer, collab.Uploader, collab.Notifier, logger, emit)
	sched := NewScheduler(code, cfg.Cycle.Interval(), cfg.Cycle.Grace(), cfg.Cycle.MaxCycles,
		acc, conn, gate, pipeline, logger, emit)

	return &StationMonitor{
		code:   code,
		conn:   conn,
		sched:  sched,
		logger: logger,
	}
}

// Code returns the station code this monitor owns.
func (m *StationMonitor) Code() string { return m.code }

// ConnectionState exposes the feed state for status reporting.
func (m *StationMonitor) ConnectionState() ConnState { return m.conn.State() }

// Run blocks until both the receive loop and the scheduler have stopped.
// When the scheduler exhausts a finite cycle budget it also tears down the
// feed, so single-shot runs terminate instead of streaming forever.
func (m *StationMonitor) Run(ctx context.Context) {
	m.logger.Info("station monitor starting")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.conn.Run(runCtx)
	}()

	m.sched.Run(runCtx)
	cancel()
	wg.Wait()

	m.logger.Info("station monitor stopped")
}
