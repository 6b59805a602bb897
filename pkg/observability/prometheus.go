package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lineage"

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// PrometheusHooks implements [PipelineHooks] and [HTTPHooks] on top of
// Prometheus collectors registered with a caller-supplied registry.
type PrometheusHooks struct {
	RegionsTotal    *prometheus.CounterVec
	RegionDuration  prometheus.Histogram
	RegionNodes     prometheus.Histogram
	EdgesTotal      prometheus.Counter
	RootlessTotal   prometheus.Counter
	ConflictsTotal  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	InFlightRegions prometheus.Gauge
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if reg already holds collectors with the same names.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		RegionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "regions_total",
				Help:      "Regions processed, by outcome.",
			},
			[]string{"status"},
		),
		RegionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "region_duration_seconds",
				Help:      "Time to build graph, tree and layout for one region.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		RegionNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "region_nodes",
				Help:      "Districts per region.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		EdgesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "edges_total",
				Help:      "Lineage events processed across all regions.",
			},
		),
		RootlessTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "rootless_regions_total",
				Help:      "Regions whose lineage is a pure cycle and needed a fallback root.",
			},
		),
		ConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "year_conflicts_total",
				Help:      "Events whose year disagreed with an earlier formation year.",
			},
			[]string{"region"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InFlightRegions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "regions_in_flight",
				Help:      "Regions currently being processed.",
			},
		),
	}
	reg.MustRegister(
		h.RegionsTotal, h.RegionDuration, h.RegionNodes, h.EdgesTotal,
		h.RootlessTotal, h.ConflictsTotal, h.HTTPRequests, h.HTTPDuration,
		h.InFlightRegions,
	)
	return h
}

func (h *PrometheusHooks) OnRegionStart(_ context.Context, _ string, _ int) {
	h.InFlightRegions.Inc()
}

func (h *PrometheusHooks) OnRegionComplete(_ context.Context, _ string, nodeCount, edgeCount int, d time.Duration, err error) {
	h.InFlightRegions.Dec()
	status := "success"
	if err != nil {
		status = "error"
	}
	h.RegionsTotal.WithLabelValues(status).Inc()
	h.RegionDuration.Observe(d.Seconds())
	h.RegionNodes.Observe(float64(nodeCount))
	h.EdgesTotal.Add(float64(edgeCount))
}

func (h *PrometheusHooks) OnRootlessRegion(context.Context, string, string) {
	h.RootlessTotal.Inc()
}

func (h *PrometheusHooks) OnYearConflict(_ context.Context, region, _ string) {
	h.ConflictsTotal.WithLabelValues(region).Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
