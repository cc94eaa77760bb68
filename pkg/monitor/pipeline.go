package monitor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/station"
	"riverwatch/pkg/telemetry"
)

// Pipeline runs the render → upload → notify leg of one approved cycle.
// Failures are surfaced to logs and telemetry and the cycle is abandoned;
// the next tick starts fresh, because a stale chart is not worth resending.
type Pipeline struct {
	renderer Renderer
	uploader Uploader
	notifier Notifier
	logger   *log.Entry
	emit     func(telemetry.TelemetryEvent)
}

// NewPipeline composes the external collaborators for one station.
func NewPipeline(renderer Renderer, uploader Uploader, notifier Notifier,
	logger *log.Entry, emit func(telemetry.TelemetryEvent)) *Pipeline {
	return &Pipeline{
		renderer: renderer,
		uploader: uploader,
		notifier: notifier,
		logger:   logger,
		emit:     emit,
	}
}

// Execute performs one cycle. It returns the first collaborator error for
// the caller's tests; the scheduler itself ignores the return value.
func (p *Pipeline) Execute(ctx context.Context, meta station.Meta, outcome CycleOutcome) error {
	start := time.Now()

	path, err := p.renderer.Render(meta, outcome.Snapshot)
	if err != nil {
		p.fail(err, "render")
		return fmt.Errorf("render station %s: %w", outcome.StationCode, err)
	}
	p.logger.WithField("path", path).Debug("chart rendered")

	if !outcome.ShouldNotify {
		p.logger.WithField("reason", outcome.Reason).Info("cycle rendered without notification")
		p.emit(telemetry.NewCycleCompleted(outcome.StationCode, false, time.Since(start)))
		return nil
	}

	imageURL, err := p.uploader.Upload(ctx, path)
	if err != nil {
		p.fail(err, "upload")
		return fmt.Errorf("upload chart for station %s: %w", outcome.StationCode, err)
	}

	if err := p.notifier.Notify(ctx, imageURL); err != nil {
		p.fail(err, "notify")
		return fmt.Errorf("notify for station %s: %w", outcome.StationCode, err)
	}

	p.logger.WithFields(log.Fields{
		"image_url": imageURL,
		"took":      time.Since(start).String(),
	}).Info("chart delivered")
	p.emit(telemetry.NewCycleCompleted(outcome.StationCode, true, time.Since(start)))
	return nil
}

func (p *Pipeline) fail(err error, stage string) {
	p.emit(telemetry.NewMonitorError(err, stage, telemetry.ErrorSeverityError))
	p.logger.WithError(err).WithField("stage", stage).Error("cycle failed")
}
