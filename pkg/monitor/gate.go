package monitor

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"

	"riverwatch/pkg/station"
)

// Skip/approval reasons carried on CycleOutcome.
const (
	ReasonEmptyWindow         = "empty_window"
	ReasonUnchanged           = "unchanged"
	ReasonNewData             = "new_data"
	ReasonNotifyDisabled      = "notifications_disabled"
	ReasonCycleInFlight       = "previous_cycle_in_flight"
	ReasonMetadataUnavailable = "metadata_unavailable"
)

// CycleOutcome is the gate's verdict for one scheduled cycle.
type CycleOutcome struct {
	StationCode  string
	Snapshot     []station.Record
	ShouldRender bool
	ShouldNotify bool
	Reason       string

	fp      uint64
	fpValid bool
}

// DeliveryGate decides whether a cycle is worth rendering and notifying. It
// fingerprints the latest record and declines when nothing changed since the
// last approved cycle, which is what keeps reconnect storms from re-sending
// the same chart. A fingerprint failure counts as "changed": better a
// redundant notification than silently going dark.
type DeliveryGate struct {
	notifyEnabled bool

	mu      sync.Mutex
	last    uint64
	hasLast bool
}

// NewDeliveryGate creates a gate. notifyEnabled=false keeps the render path
// alive for observability while suppressing outbound notification.
func NewDeliveryGate(notifyEnabled bool) *DeliveryGate {
	return &DeliveryGate{notifyEnabled: notifyEnabled}
}

// Decide produces the outcome for the given window snapshot. It does not
// advance the change detector; the caller commits the outcome once the
// cycle actually starts, so a skipped tick never swallows an update.
func (g *DeliveryGate) Decide(code string, snap []station.Record) CycleOutcome {
	out := CycleOutcome{StationCode: code, Snapshot: snap}

	if len(snap) == 0 {
		out.Reason = ReasonEmptyWindow
		return out
	}

	fp, err := fingerprint(snap[len(snap)-1])

	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil && g.hasLast && fp == g.last {
		out.Reason = ReasonUnchanged
		return out
	}
	if err == nil {
		out.fp = fp
		out.fpValid = true
	}

	out.ShouldRender = true
	if g.notifyEnabled {
		out.ShouldNotify = true
		out.Reason = ReasonNewData
	} else {
		out.Reason = ReasonNotifyDisabled
	}
	return out
}

// Commit records the fingerprint of an outcome whose cycle started. An
// outcome whose fingerprint could not be computed commits nothing, so the
// next tick fails open again.
func (g *DeliveryGate) Commit(out CycleOutcome) {
	if !out.fpValid {
		return
	}
	g.mu.Lock()
	g.last = out.fp
	g.hasLast = true
	g.mu.Unlock()
}

// fingerprint summarizes the most recent record: timestamp plus both values,
// with explicit presence markers so "absent" and "zero" hash differently.
func fingerprint(rec station.Record) (uint64, error) {
	h := fnv.New64a()
	buf := make([]byte, 0, 26)
	buf = binary.BigEndian.AppendUint64(buf, uint64(rec.Time.Unix()))
	buf = appendValue(buf, rec.WaterLevel)
	buf = appendValue(buf, rec.Rainfall)
	if _, err := h.Write(buf); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func appendValue(buf []byte, v *float64) []byte {
	if v == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(*v))
}
