package telemetry

// NoopPublisher discards every event. It stands in wherever telemetry is
// optional, so emit sites never need a nil check.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (n *NoopPublisher) Publish(TelemetryEvent) {}
