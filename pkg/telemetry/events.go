package telemetry

import "time"

type TelemetryEvent interface {
	Timestamp() time.Time // When the event occurred
	EventType() string    // For categorization/filtering
}

// TelemetryPublisher receives events from the monitoring pipeline. Publish
// must never block the hot path.
type TelemetryPublisher interface {
	Publish(event TelemetryEvent)
}

type ErrorSeverity string

const (
	ErrorSeverityInfo    ErrorSeverity = "info"
	ErrorSeverityWarning ErrorSeverity = "warning"
	ErrorSeverityError   ErrorSeverity = "error"
)

// RecordAccepted marks one telemetry sample entering a station window.
type RecordAccepted struct {
	timestamp time.Time
	Station   string
}

func (e RecordAccepted) Timestamp() time.Time { return e.timestamp }
func (e RecordAccepted) EventType() string    { return "record_accepted" }

func NewRecordAccepted(station string) RecordAccepted {
	return RecordAccepted{timestamp: time.Now(), Station: station}
}

// RecordRejected marks a duplicate or out-of-order sample filtered by the
// window watermark. Expected steady-state after reconnect resumption.
type RecordRejected struct {
	timestamp time.Time
	Station   string
	Reason    string
}

func (e RecordRejected) Timestamp() time.Time { return e.timestamp }
func (e RecordRejected) EventType() string    { return "record_rejected" }

func NewRecordRejected(station, reason string) RecordRejected {
	return RecordRejected{timestamp: time.Now(), Station: station, Reason: reason}
}

// ParseFailure marks a frame that could not be decoded. The sample is gone;
// the loop keeps going.
type ParseFailure struct {
	timestamp time.Time
	Station   string
	Err       error
}

func (e ParseFailure) Timestamp() time.Time { return e.timestamp }
func (e ParseFailure) EventType() string    { return "parse_failure" }

func NewParseFailure(station string, err error) ParseFailure {
	return ParseFailure{timestamp: time.Now(), Station: station, Err: err}
}

// ConnectionStatusChanged tracks a station feed going up or down.
type ConnectionStatusChanged struct {
	timestamp time.Time
	Station   string
	Connected bool
}

func (e ConnectionStatusChanged) Timestamp() time.Time { return e.timestamp }
func (e ConnectionStatusChanged) EventType() string    { return "connection_status_changed" }

func NewConnectionStatusChanged(station string, connected bool) ConnectionStatusChanged {
	return ConnectionStatusChanged{timestamp: time.Now(), Station: station, Connected: connected}
}

// CycleCompleted marks one render/deliver cycle finishing.
type CycleCompleted struct {
	timestamp time.Time
	Station   string
	Notified  bool
	Latency   time.Duration // render through delivery
}

func (e CycleCompleted) Timestamp() time.Time { return e.timestamp }
func (e CycleCompleted) EventType() string    { return "cycle_completed" }

func NewCycleCompleted(station string, notified bool, latency time.Duration) CycleCompleted {
	return CycleCompleted{timestamp: time.Now(), Station: station, Notified: notified, Latency: latency}
}

// CycleSkipped marks a tick that produced no render (empty window, unchanged
// fingerprint, previous cycle still in flight).
type CycleSkipped struct {
	timestamp time.Time
	Station   string
	Reason    string
}

func (e CycleSkipped) Timestamp() time.Time { return e.timestamp }
func (e CycleSkipped) EventType() string    { return "cycle_skipped" }

func NewCycleSkipped(station, reason string) CycleSkipped {
	return CycleSkipped{timestamp: time.Now(), Station: station, Reason: reason}
}

// MonitorError is any pipeline failure worth counting: connect errors,
// render/upload/notify failures.
type MonitorError struct {
	timestamp time.Time
	Err       error
	Context   string
	Severity  ErrorSeverity
}

func (e MonitorError) Timestamp() time.Time { return e.timestamp }
func (e MonitorError) EventType() string    { return "monitor_error" }

func NewMonitorError(err error, context string, severity ErrorSeverity) MonitorError {
	return MonitorError{timestamp: time.Now(), Err: err, Context: context, Severity: severity}
}
