package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hupe1980/meshgo"
	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements meshgo.MetricsCollector.
type PrometheusCollector struct {
	opLatency     *prometheus.HistogramVec
	insertLevels  prometheus.Histogram
	locateSteps   prometheus.Histogram
	snapshotBytes *prometheus.CounterVec
	levelVertices *prometheus.GaugeVec
}

var _ meshgo.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector registered with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meshgo_operation_latency_seconds",
			Help:    "Latency of mesh operations",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op", "status"}),
		insertLevels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshgo_insert_levels",
			Help:    "Number of hierarchy levels a point was inserted into",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
		locateSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshgo_locate_steps",
			Help:    "Walk steps summed over all levels per location query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		snapshotBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshgo_snapshot_bytes_total",
			Help: "Archive bytes saved or loaded",
		}, []string{"op"}),
		levelVertices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meshgo_level_vertices",
			Help: "Number of vertices per hierarchy level",
		}, []string{"level"}),
	}

	reg.MustRegister(c.opLatency, c.insertLevels, c.locateSteps, c.snapshotBytes, c.levelVertices)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordInsert implements meshgo.MetricsCollector.
func (c *PrometheusCollector) RecordInsert(levels int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("insert", status(err)).Observe(d.Seconds())
	if err == nil {
		c.insertLevels.Observe(float64(levels))
	}
}

// RecordRemove implements meshgo.MetricsCollector.
func (c *PrometheusCollector) RecordRemove(_ int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("remove", status(err)).Observe(d.Seconds())
}

// RecordLocate implements meshgo.MetricsCollector.
func (c *PrometheusCollector) RecordLocate(steps int, d time.Duration) {
	c.opLatency.WithLabelValues("locate", "ok").Observe(d.Seconds())
	c.locateSteps.Observe(float64(steps))
}

// RecordSnapshot implements meshgo.MetricsCollector.
func (c *PrometheusCollector) RecordSnapshot(load bool, size int, d time.Duration, err error) {
	op := "save"
	if load {
		op = "load"
	}
	c.opLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	if err == nil {
		c.snapshotBytes.WithLabelValues(op).Add(float64(size))
	}
}

// SetLevels publishes the per-level vertex counts.
func (c *PrometheusCollector) SetLevels(stats []hierarchy.LevelStats) {
	c.levelVertices.Reset()
	for _, s := range stats {
		c.levelVertices.WithLabelValues(strconv.Itoa(s.Level)).Set(float64(s.Vertices))
	}
}

// serveMetrics starts an HTTP server exposing reg on /metrics. The returned
// function shuts it down.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return func() { _ = srv.Close() }
}
