package telemetry

type Snapshot struct {
	// Core counters
	RecordsAccepted   uint64
	RecordsRejected   uint64
	ParseFailures     uint64
	CyclesCompleted   uint64
	CyclesSkipped     uint64
	NotificationsSent uint64
	ErrorsTotal       uint64

	// Per-station connection status
	StationsConnected map[string]bool

	// Breakdowns
	RejectionsByReason map[string]uint64
	SkipsByReason      map[string]uint64
	ErrorsByContext    map[string]uint64
	ErrorsBySeverity   map[ErrorSeverity]uint64
	RecentErrors       []string

	// Rates and latency
	RecordsPerSecond float64
	AvgCycleMs       float64
	MaxCycleMs       float64

	// System
	UptimeSeconds      float64
	ChannelUtilization float64
}

type TelemetryReader interface {
	Snapshot() Snapshot
}
