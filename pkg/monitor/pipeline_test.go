package monitor

import (
	"context"
	"errors"
	"testing"

	"riverwatch/pkg/station"
	"riverwatch/pkg/telemetry"
	"riverwatch/pkg/testutil"
)

func approvedOutcome() CycleOutcome {
	return CycleOutcome{
		StationCode:  "STN06",
		Snapshot:     []station.Record{gateRec(1700000000, 1.2)},
		ShouldRender: true,
		ShouldNotify: true,
		Reason:       ReasonNewData,
	}
}

func errStage(pub *testutil.CapturingPublisher) string {
	for _, ev := range pub.Snapshot() {
		if me, ok := ev.(telemetry.MonitorError); ok {
			return me.Context
		}
	}
	return ""
}

func TestPipeline_RenderFailureAbandonsCycle(t *testing.T) {
	renderer := &testutil.RecordingRenderer{Err: errors.New("encode failed")}
	uploader := &testutil.RecordingUploader{}
	notifier := &testutil.RecordingNotifier{}
	pub := testutil.NewCapturingPublisher()
	p := NewPipeline(renderer, uploader, notifier, testLogger(), pub.Publish)

	err := p.Execute(context.Background(), station.Meta{Code: "STN06"}, approvedOutcome())
	if err == nil {
		t.Fatal("expected an error from a failed render")
	}
	if len(uploader.Uploads()) != 0 || len(notifier.Notifications()) != 0 {
		t.Fatal("a failed render must not reach upload or notify")
	}
	if got := errStage(pub); got != "render" {
		t.Fatalf("expected a render-stage error event, got %q", got)
	}
}

func TestPipeline_UploadFailureStopsBeforeNotify(t *testing.T) {
	renderer := &testutil.RecordingRenderer{Path: "graphs/station_STN06.png"}
	uploader := &testutil.RecordingUploader{Err: errors.New("503 from image host")}
	notifier := &testutil.RecordingNotifier{}
	pub := testutil.NewCapturingPublisher()
	p := NewPipeline(renderer, uploader, notifier, testLogger(), pub.Publish)

	if err := p.Execute(context.Background(), station.Meta{Code: "STN06"}, approvedOutcome()); err == nil {
		t.Fatal("expected an error from a failed upload")
	}
	if len(notifier.Notifications()) != 0 {
		t.Fatal("a failed upload must not notify")
	}
	if got := errStage(pub); got != "upload" {
		t.Fatalf("expected an upload-stage error event, got %q", got)
	}
	if pub.CountByType("cycle_completed") != 0 {
		t.Fatal("a failed cycle must not report completion")
	}
}

func TestPipeline_RenderOnlyCycleCompletesWithoutNotify(t *testing.T) {
	renderer := &testutil.RecordingRenderer{Path: "graphs/station_STN06.png"}
	uploader := &testutil.RecordingUploader{}
	notifier := &testutil.RecordingNotifier{}
	pub := testutil.NewCapturingPublisher()
	p := NewPipeline(renderer, uploader, notifier, testLogger(), pub.Publish)

	outcome := approvedOutcome()
	outcome.ShouldNotify = false
	outcome.Reason = ReasonNotifyDisabled

	if err := p.Execute(context.Background(), station.Meta{Code: "STN06"}, outcome); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(uploader.Uploads()) != 0 {
		t.Fatal("render-only cycles must not upload")
	}
	completed := false
	for _, ev := range pub.Snapshot() {
		if cc, ok := ev.(telemetry.CycleCompleted); ok {
			completed = true
			if cc.Notified {
				t.Fatal("completion event should record notified=false")
			}
		}
	}
	if !completed {
		t.Fatal("expected a cycle_completed event")
	}
}
