package window

import (
	"testing"
	"time"

	"riverwatch/pkg/station"
)

func rec(ts int64) station.Record {
	v := float64(ts % 100)
	return station.Record{Time: time.Unix(ts, 0).UTC(), WaterLevel: &v}
}

func timestamps(records []station.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.Time.Unix()
	}
	return out
}

func TestAccumulator_AcceptsStrictlyIncreasing(t *testing.T) {
	acc := NewAccumulator(10)
	input := []int64{100, 200, 300, 400}
	for _, ts := range input {
		if got := acc.Accept(rec(ts)); got != Accepted {
			t.Fatalf("ts=%d: expected Accepted, got %v", ts, got)
		}
	}
	snap := timestamps(acc.Snapshot())
	for i, ts := range input {
		if snap[i] != ts {
			t.Fatalf("snapshot mismatch at %d: %v", i, snap)
		}
	}
}

func TestAccumulator_RejectsDuplicateAndOutOfOrder(t *testing.T) {
	acc := NewAccumulator(10)
	acc.Accept(rec(100))
	acc.Accept(rec(200))

	if got := acc.Accept(rec(200)); got != RejectedDuplicate {
		t.Fatalf("expected RejectedDuplicate, got %v", got)
	}
	if got := acc.Accept(rec(150)); got != RejectedOutOfOrder {
		t.Fatalf("expected RejectedOutOfOrder, got %v", got)
	}

	// Rejection must leave the snapshot untouched, no matter how often.
	for i := 0; i < 3; i++ {
		acc.Accept(rec(150))
	}
	snap := timestamps(acc.Snapshot())
	if len(snap) != 2 || snap[0] != 100 || snap[1] != 200 {
		t.Fatalf("snapshot changed by rejection: %v", snap)
	}
}

func TestAccumulator_CapacityEvictsOldest(t *testing.T) {
	acc := NewAccumulator(3)
	for _, ts := range []int64{1, 2, 3, 4} {
		acc.Accept(rec(ts))
	}
	snap := timestamps(acc.Snapshot())
	if len(snap) != 3 || snap[0] != 2 || snap[1] != 3 || snap[2] != 4 {
		t.Fatalf("expected [2 3 4], got %v", snap)
	}
}

func TestAccumulator_LenNeverExceedsCapacity(t *testing.T) {
	acc := NewAccumulator(5)
	for ts := int64(1); ts <= 500; ts++ {
		acc.Accept(rec(ts))
		if acc.Len() > 5 {
			t.Fatalf("window grew past capacity at ts=%d: %d", ts, acc.Len())
		}
	}
	if acc.Len() != 5 {
		t.Fatalf("expected full window, got %d", acc.Len())
	}
}

func TestAccumulator_SnapshotIsACopy(t *testing.T) {
	acc := NewAccumulator(10)
	acc.Accept(rec(100))
	snap := acc.Snapshot()
	snap[0].Time = time.Unix(999, 0)

	again := acc.Snapshot()
	if again[0].Time.Unix() != 100 {
		t.Fatalf("snapshot mutation leaked into the window")
	}
}

func TestAccumulator_ReconnectRedelivery(t *testing.T) {
	// Disconnect after A, reconnect, server resends A then B: final window
	// must be exactly [A, B].
	acc := NewAccumulator(10)
	if got := acc.Accept(rec(100)); got != Accepted {
		t.Fatalf("A: %v", got)
	}
	if got := acc.Accept(rec(100)); got != RejectedDuplicate {
		t.Fatalf("redelivered A: %v", got)
	}
	if got := acc.Accept(rec(200)); got != Accepted {
		t.Fatalf("B: %v", got)
	}
	snap := timestamps(acc.Snapshot())
	if len(snap) != 2 || snap[0] != 100 || snap[1] != 200 {
		t.Fatalf("expected [A B], got %v", snap)
	}
}

func TestAcceptResult_String(t *testing.T) {
	if Accepted.String() != "accepted" || RejectedOutOfOrder.String() != "rejected_out_of_order" {
		t.Fatalf("unexpected result labels")
	}
}
