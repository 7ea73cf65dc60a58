// Package metrics records import runs as Prometheus metrics.
//
// A Recorder owns its registry so the CLI can write a node-exporter textfile
// or push to a Pushgateway after a one-shot run, while the server exposes
// the same registry on /metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/JonMunkholm/stockimport/internal/apply"
	"github.com/JonMunkholm/stockimport/internal/core"
)

// Run outcomes used as the status label.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Recorder holds the import metrics and their registry.
type Recorder struct {
	reg *prometheus.Registry

	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	RowsRead           *prometheus.CounterVec
	Statements         *prometheus.CounterVec
	Diagnostics        *prometheus.CounterVec
	LastGeneration     prometheus.Gauge

	Applies       *prometheus.CounterVec
	ApplyDuration prometheus.Histogram
	RowsInserted  *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,

		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_generations_total",
				Help: "Workbook generations, partitioned by outcome.",
			},
			[]string{"status"},
		),
		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockimport_generation_duration_seconds",
			Help:    "Time to turn a workbook into a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		RowsRead: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_rows_read_total",
				Help: "Data rows read from the workbook, per sheet.",
			},
			[]string{"sheet"},
		),
		Statements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_statements_total",
				Help: "Statements emitted, per target entity.",
			},
			[]string{"entity"},
		),
		Diagnostics: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_diagnostics_total",
				Help: "Warnings raised while building a plan, per kind.",
			},
			[]string{"kind"},
		),
		LastGeneration: f.NewGauge(prometheus.GaugeOpts{
			Name: "stockimport_last_generation_timestamp_seconds",
			Help: "Unix time of the last successful generation.",
		}),

		Applies: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_applies_total",
				Help: "Batch applications, partitioned by outcome and mode.",
			},
			[]string{"status", "mode"},
		),
		ApplyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockimport_apply_duration_seconds",
			Help:    "Time to apply a batch in one transaction.",
			Buckets: prometheus.DefBuckets,
		}),
		RowsInserted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_rows_inserted_total",
				Help: "Rows written by applied batches, per entity.",
			},
			[]string{"entity"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockimport_http_requests_total",
				Help: "HTTP API requests, per route and status code.",
			},
			[]string{"route", "code"},
		),
	}
}

// WithRuntime adds Go runtime and process collectors, for long-running
// processes.
func (r *Recorder) WithRuntime() *Recorder {
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveWorkbook counts the data rows read per sheet.
func (r *Recorder) ObserveWorkbook(wb core.Workbook) {
	r.RowsRead.WithLabelValues(core.SheetRawMaterials).Add(float64(len(wb.RawMaterials)))
	r.RowsRead.WithLabelValues(core.SheetSubAssemblies).Add(float64(len(wb.SubAssemblies)))
	r.RowsRead.WithLabelValues(core.SheetBOM).Add(float64(len(wb.BOM)))
}

// ObserveGeneration records one generation. res may be nil when err is set.
func (r *Recorder) ObserveGeneration(res *core.Result, elapsed time.Duration, err error) {
	r.GenerationDuration.Observe(elapsed.Seconds())

	switch {
	case errors.Is(err, core.ErrEmptyWorkbook):
		r.Generations.WithLabelValues(StatusEmpty).Inc()
	case err != nil:
		r.Generations.WithLabelValues(StatusError).Inc()
	default:
		r.Generations.WithLabelValues(StatusOK).Inc()
		r.LastGeneration.SetToCurrentTime()
	}

	if res == nil || res.Plan == nil {
		return
	}
	for kind, n := range core.CountDiagnostics(res.Plan.Diagnostics) {
		r.Diagnostics.WithLabelValues(string(kind)).Add(float64(n))
	}
	for _, e := range core.Entities {
		if n := res.Batch.Count(e); n > 0 {
			r.Statements.WithLabelValues(string(e)).Add(float64(n))
		}
	}
}

// ObserveApply records one batch application. report may be nil when err
// is set.
func (r *Recorder) ObserveApply(report *apply.Report, dryRun bool, err error) {
	mode := "commit"
	if dryRun {
		mode = "dry_run"
	}
	if err != nil {
		r.Applies.WithLabelValues(StatusError, mode).Inc()
		return
	}
	r.Applies.WithLabelValues(StatusOK, mode).Inc()
	r.ApplyDuration.Observe(report.Duration.Seconds())
	if dryRun {
		return
	}
	for entity, n := range report.Affected {
		r.RowsInserted.WithLabelValues(string(entity)).Add(float64(n))
	}
}

// WriteTextfile writes the registry for the node-exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under the given job name.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return errors.New("metrics: pushgateway URL is required")
	}
	if job == "" {
		job = "stockimport"
	}
	if err := push.New(gatewayURL, job).Gatherer(r.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
