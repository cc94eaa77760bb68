package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"riverwatch/pkg/chart"
	"riverwatch/pkg/cloudinary"
	"riverwatch/pkg/config"
	"riverwatch/pkg/line"
	"riverwatch/pkg/monitor"
	"riverwatch/pkg/telemetry"
	"riverwatch/pkg/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		info := version.Info()
		fmt.Printf("riverwatch version %s, commit %s, built %s\n", info.Version, info.Commit, info.Built)
		return
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration invalid")
	}
	if cfg == nil {
		return // help was requested
	}

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("riverwatch failed")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var registerer prometheus.Registerer
	if cfg.MetricsAddr != "" {
		registerer = prometheus.DefaultRegisterer
	}
	agg := telemetry.NewAggregator(nil, telemetry.DefaultConfig(), registerer)
	agg.Start(ctx)
	defer agg.Stop()

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr)
	}

	collab := monitor.Collaborators{
		Renderer: chart.NewRenderer(cfg.GraphDir),
		Uploader: cloudinary.NewUploader(cfg.Cloudinary),
		Notifier: line.NewNotifier(cfg.Line),
	}
	dialer := monitor.NewWebsocketDialer(cfg.Network)

	log.WithFields(log.Fields{
		"stations":         cfg.Stations,
		"interval_minutes": cfg.Cycle.IntervalMinutes,
		"notifications":    cfg.Line.Enabled,
	}).Info("riverwatch starting")

	var wg sync.WaitGroup
	monitors := make([]*monitor.StationMonitor, 0, len(cfg.Stations))
	for _, code := range cfg.Stations {
		m := monitor.NewStationMonitor(cfg, code, dialer, collab, agg, log.WithField("station", code))
		monitors = append(monitors, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Run(ctx)
		}()
	}

	// The reporter lives outside the monitor WaitGroup: with a finite
	// cycle budget every monitor returns on its own, and the process has
	// to exit rather than sit behind a reporter waiting for a signal.
	reporterCtx, stopReporter := context.WithCancel(ctx)
	reporter := NewStatusReporter(agg, monitors, log.WithField("component", "status"))
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		reporter.Run(reporterCtx)
	}()

	waitForMonitors(&wg, stopReporter, reporterDone)
	log.Info("riverwatch stopped")
	return nil
}

// waitForMonitors blocks until every station monitor has returned, then
// stops the status reporter and waits for it to finish.
func waitForMonitors(monitors *sync.WaitGroup, stopReporter context.CancelFunc, reporterDone <-chan struct{}) {
	monitors.Wait()
	stopReporter()
	<-reporterDone
}

// startMetricsServer serves Prometheus metrics until the context ends.
// Metrics are best effort; a failed listener is logged, not fatal.
func startMetricsServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.WithField("addr", addr).Info("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
