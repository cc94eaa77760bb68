package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/monitor"
	"riverwatch/pkg/telemetry"
)

// StatusReporter logs a periodic operational summary so a quiet deployment
// still shows signs of life. It stays silent between updates when nothing
// has changed.
type StatusReporter struct {
	telemetry telemetry.TelemetryReader
	monitors  []*monitor.StationMonitor
	logger    *log.Entry
	interval  time.Duration

	lastSnapshot telemetry.Snapshot
}

// NewStatusReporter builds a reporter over the shared telemetry aggregator.
func NewStatusReporter(reader telemetry.TelemetryReader, monitors []*monitor.StationMonitor, logger *log.Entry) *StatusReporter {
	return &StatusReporter{
		telemetry: reader,
		monitors:  monitors,
		logger:    logger,
		interval:  30 * time.Second,
	}
}

// Run blocks until the context ends, logging a status line whenever
// activity has occurred since the previous one.
func (r *StatusReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *StatusReporter) report() {
	snapshot := r.telemetry.Snapshot()
	if !r.shouldReport(snapshot) {
		r.lastSnapshot = snapshot
		return
	}

	states := make(map[string]string, len(r.monitors))
	for _, m := range r.monitors {
		states[m.Code()] = m.ConnectionState().String()
	}

	r.logger.WithFields(log.Fields{
		"records_accepted":   snapshot.RecordsAccepted,
		"records_rejected":   snapshot.RecordsRejected,
		"parse_failures":     snapshot.ParseFailures,
		"cycles_completed":   snapshot.CyclesCompleted,
		"cycles_skipped":     snapshot.CyclesSkipped,
		"notifications_sent": snapshot.NotificationsSent,
		"errors_total":       snapshot.ErrorsTotal,
		"records_per_second": snapshot.RecordsPerSecond,
		"stations":           states,
	}).Info("status")

	r.lastSnapshot = snapshot
}

// shouldReport keeps the log quiet when nothing moved since the last line.
func (r *StatusReporter) shouldReport(snapshot telemetry.Snapshot) bool {
	last := r.lastSnapshot

	if last.RecordsAccepted == 0 && last.CyclesCompleted == 0 && last.ErrorsTotal == 0 {
		return true // always report the first status
	}
	if snapshot.RecordsAccepted != last.RecordsAccepted ||
		snapshot.CyclesCompleted != last.CyclesCompleted ||
		snapshot.NotificationsSent != last.NotificationsSent {
		return true
	}
	if snapshot.ErrorsTotal > last.ErrorsTotal || snapshot.ParseFailures > last.ParseFailures {
		return true
	}
	for station, connected := range snapshot.StationsConnected {
		if last.StationsConnected[station] != connected {
			return true
		}
	}
	return false
}
