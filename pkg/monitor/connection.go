package monitor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/config"
	"riverwatch/pkg/station"
	"riverwatch/pkg/telemetry"
	"riverwatch/pkg/window"
)

// ConnState is the lifecycle state of one station's feed connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateStreaming
	StateBackoff
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// ConnectionManager owns the live link to one station feed: connect, receive,
// detect failure, reconnect with exponential backoff. It never gives up on
// its own; only context cancellation stops it. Every accepted record lands in
// exactly one Accumulator.
type ConnectionManager struct {
	code           string
	url            string
	dialer         StreamDialer
	acc            *window.Accumulator
	logger         *log.Entry
	emit           func(telemetry.TelemetryEvent)
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu       sync.Mutex
	state    ConnState
	failures int
	meta     station.Meta
	hasMeta  bool
}

// NewConnectionManager wires a manager for one station.
func NewConnectionManager(code, url string, dialer StreamDialer, acc *window.Accumulator,
	net config.NetworkConfig, logger *log.Entry, emit func(telemetry.TelemetryEvent)) *ConnectionManager {
	return &ConnectionManager{
		code:           code,
		url:            url,
		dialer:         dialer,
		acc:            acc,
		logger:         logger,
		emit:           emit,
		initialBackoff: net.InitialBackoff(),
		maxBackoff:     net.MaxBackoff(),
		state:          StateDisconnected,
	}
}

// State reports the current connection state.
func (m *ConnectionManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Failures reports the consecutive-failure count driving the backoff.
func (m *ConnectionManager) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// Meta returns the station identity captured from the feed, once available.
func (m *ConnectionManager) Meta() (station.Meta, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta, m.hasMeta
}

// Run drives the connect/stream/backoff loop until ctx is cancelled. The
// socket is always closed before Run returns or reconnects.
func (m *ConnectionManager) Run(ctx context.Context) {
	defer m.setState(StateDisconnected)

	for ctx.Err() == nil {
		m.setState(StateConnecting)
		conn, err := m.dialer.Dial(ctx, m.url)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.registerFailure()
			m.emit(telemetry.NewMonitorError(err, "connect", telemetry.ErrorSeverityWarning))
			m.logger.WithError(err).WithField("failures", m.Failures()).Warn("connect failed")
			if !m.sleepBackoff(ctx) {
				return
			}
			continue
		}

		m.setState(StateStreaming)
		m.emit(telemetry.NewConnectionStatusChanged(m.code, true))
		m.logger.Info("connected to station feed")

		err = m.receiveLoop(ctx, conn)
		_ = conn.Close()
		m.emit(telemetry.NewConnectionStatusChanged(m.code, false))

		if ctx.Err() != nil {
			return
		}

		m.registerFailure()
		m.emit(telemetry.NewMonitorError(err, "stream", telemetry.ErrorSeverityWarning))
		m.logger.WithError(err).Warn("station stream lost")
		if !m.sleepBackoff(ctx) {
			return
		}
	}
}

// receiveLoop reads frames until the connection dies. A goroutine closes the
// socket on cancellation so the blocking read always unblocks.
func (m *ConnectionManager) receiveLoop(ctx context.Context, conn StreamConn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		m.handleFrame(raw)
	}
}

// handleFrame parses one frame and feeds its records through the window
// watermark. Parse failures are counted and dropped; the same malformed
// frame will not un-malform itself, so there is nothing to retry.
func (m *ConnectionManager) handleFrame(raw []byte) {
	update, err := station.Parse(raw)
	if err != nil {
		m.emit(telemetry.NewParseFailure(m.code, err))
		m.logger.WithError(err).Warn("dropping undecodable frame")
		return
	}

	m.mu.Lock()
	m.meta = update.Meta
	m.hasMeta = true
	m.failures = 0 // any successfully parsed record resets the backoff
	m.mu.Unlock()

	accepted := 0
	for _, rec := range update.Records {
		switch res := m.acc.Accept(rec); res {
		case window.Accepted:
			accepted++
			m.emit(telemetry.NewRecordAccepted(m.code))
		default:
			// Re-delivery after reconnect is the expected resumption
			// pattern, so rejections are routine.
			m.emit(telemetry.NewRecordRejected(m.code, res.String()))
			m.logger.WithField("result", res.String()).Debug("record filtered by watermark")
		}
	}
	m.logger.WithFields(log.Fields{
		"records":  len(update.Records),
		"accepted": accepted,
		"window":   m.acc.Len(),
	}).Debug("frame applied")
}

func (m *ConnectionManager) registerFailure() {
	m.mu.Lock()
	m.failures++
	m.mu.Unlock()
}

// sleepBackoff suspends for min(maxBackoff, initial*2^(n-1)) and reports
// whether the loop should continue. Cancellation mid-backoff returns false
// immediately.
func (m *ConnectionManager) sleepBackoff(ctx context.Context) bool {
	m.setState(StateBackoff)

	delay := m.backoffDelay(m.Failures())
	m.logger.WithField("delay", delay.String()).Info("backing off before reconnect")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *ConnectionManager) backoffDelay(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	delay := m.initialBackoff
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= m.maxBackoff {
			return m.maxBackoff
		}
	}
	if delay > m.maxBackoff {
		return m.maxBackoff
	}
	return delay
}

func (m *ConnectionManager) setState(s ConnState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
