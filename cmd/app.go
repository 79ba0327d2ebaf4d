package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer"
	"github.com/ingeniero-f1/ingeniero/engineer/ingest"
	"github.com/ingeniero-f1/ingeniero/engineer/rules"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/stats"
	"github.com/ingeniero-f1/ingeniero/engineer/trace"
)

// loadRules reads the rules file, or the built-in rules when none is set,
// and applies the throttle override.
func loadRules(cfg AppConfig) (*rules.Config, error) {
	rc := rules.Default()
	if cfg.RulesPath != "" {
		var err error
		if rc, err = rules.Load(cfg.RulesPath); err != nil {
			return nil, err
		}
	}
	if cfg.CommThrottle != nil {
		rc = rc.WithThrottle(*cfg.CommThrottle)
	}
	return rc, nil
}

func pipelineConfig(cfg AppConfig) ingest.Config {
	return ingest.Config{
		ListenAddr:        cfg.Listen,
		ReplayPath:        cfg.ReplayPath,
		ReplaySpeed:       cfg.ReplaySpeed,
		ReplayNoPacing:    cfg.ReplayNoPacing,
		QueueSize:         cfg.QueueSize,
		DispatchQueueSize: cfg.DispatchQueueSize,
		Dispatcher: ingest.DispatcherConfig{
			PacketFormat: cfg.PacketFormat,
			GameYear:     cfg.GameYear,
			StrictFormat: cfg.StrictFormat,
			StrictYear:   cfg.StrictYear,
		},
	}
}

// runApp builds the pipeline and its reporting tasks and runs them until ctx
// is cancelled or the replay ends. When tracing is on, the decision summary
// is written to out afterwards.
func runApp(ctx context.Context, cfg AppConfig, out io.Writer) error {
	runID := uuid.NewString()
	log := logrus.WithField("run", runID[:8])

	rc, err := loadRules(cfg)
	if err != nil {
		return err
	}
	log.Infof("rules %s loaded (throttle=%.1fs)", rc.Version(), rc.Throttle())

	cache := state.New(state.DefaultTTL())
	st := stats.New()
	var rec *ingest.Recorder
	if cfg.Record {
		rec = ingest.NewRecorder(ingest.RecorderConfig{Dir: cfg.RecordDir, QueueSize: cfg.QueueSize}, st)
	}
	p := ingest.NewPipeline(pipelineConfig(cfg), cache, st, rec)

	reg := prometheus.NewRegistry()
	if err := st.Register(reg); err != nil {
		return err
	}
	if err := stats.RegisterQueues(reg, p.Queues()...); err != nil {
		return err
	}

	reporter := &stats.Reporter{Stats: st, Interval: cfg.StatsInterval, Queues: p.Queues()}
	tasks := []ingest.Task{
		reporter.Run,
		func(ctx context.Context) error { return cache.Report(ctx, cfg.StateInterval) },
	}
	if cfg.MetricsAddr != "" {
		tasks = append(tasks, serveMetrics(cfg.MetricsAddr, reg))
	}

	var et *trace.EngineTrace
	if cfg.NoEngine {
		log.Info("engine disabled")
	} else {
		if trace.Level(cfg.TraceLevel) != trace.LevelNone {
			et = trace.NewEngineTrace(trace.Config{Level: trace.Level(cfg.TraceLevel), MaxRecords: cfg.TraceMax})
		}
		eng := engineer.NewEngine(rc, engineer.LogSink{Logger: log}, engineer.WithTrace(et))
		tasks = append(tasks, func(ctx context.Context) error {
			return eng.Run(ctx, cache, cfg.EngineInterval)
		})
	}

	err = p.Run(ctx, tasks...)
	if rec != nil && rec.Path() != "" {
		log.Infof("recording saved to %s", rec.Path())
	}
	if et.Enabled() {
		if werr := writeTraceSummary(out, et); werr != nil {
			log.WithError(werr).Warn("trace summary not written")
		}
	}
	return err
}

func writeTraceSummary(w io.Writer, et *trace.EngineTrace) error {
	b, err := trace.Summarize(et).YAML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "=== Decision Trace ===\n%s", b)
	return err
}

// serveMetrics serves reg on addr under /metrics until ctx is cancelled.
func serveMetrics(addr string, reg *prometheus.Registry) ingest.Task {
	return func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		stop := context.AfterFunc(ctx, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
		defer stop()

		logrus.Infof("[metrics] serving on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
