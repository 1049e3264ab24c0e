// Package metrics exports rigwire events as Prometheus metrics.
//
// A [Registry] implements every hook interface of the observability
// package; [Registry.Install] registers it so the pipeline, cache, router
// sessions and HTTP API report into it:
//
//	m := metrics.NewRegistry()
//	m.Install()
//	r.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/rigwire/pkg/observability"
)

const namespace = "rigwire"

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline Metrics
	LoadsTotal       *prometheus.CounterVec
	LoadDuration     prometheus.Histogram
	NetworkSize      *prometheus.GaugeVec
	AnalysisDuration *prometheus.HistogramVec
	PowerCircuits    prometheus.Gauge
	PowerOverloads   prometheus.Gauge
	Unpowered        prometheus.Gauge
	PatchProblems    *prometheus.GaugeVec
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec

	// Route Metrics
	RoutesTotal *prometheus.CounterVec
	RouteBends  prometheus.Histogram

	// Cache Metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPipelineMetrics()
	r.initRouteMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Install registers r as the pipeline, route, cache and server hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetRouteHooks(r)
	observability.SetCacheHooks(r)
	observability.SetServerHooks(r)
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)
	r.LoadsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layout_loads_total",
		Help:      "Total number of layout loads",
	}, []string{"status"})
	r.LoadDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_load_duration_seconds",
		Help:      "Layout load and snapshot build latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	r.NetworkSize = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "network_size",
		Help:      "Connectables and edges of the last loaded layout",
	}, []string{"element"})
	r.AnalysisDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Power and patch analysis latency in seconds",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"analysis"})
	r.PowerCircuits = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "power_circuits",
		Help:      "Circuits in the last power report",
	})
	r.PowerOverloads = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "power_overloads",
		Help:      "Overloaded circuits and outlets in the last power report",
	})
	r.Unpowered = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "power_unpowered_equipment",
		Help:      "Equipment drawing power without a path to an outlet",
	})
	r.PatchProblems = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "patch_problems",
		Help:      "Problems in the last patch validation",
	}, []string{"problem"})
	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagram_renders_total",
		Help:      "Total number of diagram renders",
	}, []string{"format", "status"})
	r.RenderDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "diagram_render_duration_seconds",
		Help:      "Diagram render latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
}

func (r *Registry) initRouteMetrics() {
	f := promauto.With(r.registry)
	r.RoutesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "routes_total",
		Help:      "Routing gestures by wire kind and outcome",
	}, []string{"kind", "outcome"})
	r.RouteBends = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "route_bends",
		Help:      "Via-points of committed wires",
		Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12},
	})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups by key type and result",
	}, []string{"type", "result"})
	r.CacheWrittenBytes = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_written_bytes_total",
		Help:      "Bytes written to the cache by key type",
	}, []string{"type"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being processed",
	})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnLoadStart implements observability.PipelineHooks.
func (r *Registry) OnLoadStart(context.Context, string) {}

// OnLoadComplete implements observability.PipelineHooks.
func (r *Registry) OnLoadComplete(_ context.Context, _ string, connectables, edges int, d time.Duration, err error) {
	r.LoadsTotal.WithLabelValues(status(err)).Inc()
	r.LoadDuration.Observe(d.Seconds())
	if err == nil {
		r.NetworkSize.WithLabelValues("connectables").Set(float64(connectables))
		r.NetworkSize.WithLabelValues("edges").Set(float64(edges))
	}
}

// OnPowerReport implements observability.PipelineHooks.
func (r *Registry) OnPowerReport(_ context.Context, circuits, overloads, unpowered int, d time.Duration) {
	r.AnalysisDuration.WithLabelValues("power").Observe(d.Seconds())
	r.PowerCircuits.Set(float64(circuits))
	r.PowerOverloads.Set(float64(overloads))
	r.Unpowered.Set(float64(unpowered))
}

// OnPatchResult implements observability.PipelineHooks.
func (r *Registry) OnPatchResult(_ context.Context, overlaps, overflows, unreachable int, d time.Duration) {
	r.AnalysisDuration.WithLabelValues("patch").Observe(d.Seconds())
	r.PatchProblems.WithLabelValues("overlap").Set(float64(overlaps))
	r.PatchProblems.WithLabelValues("overflow").Set(float64(overflows))
	r.PatchProblems.WithLabelValues("unreachable").Set(float64(unreachable))
}

// OnRenderStart implements observability.PipelineHooks.
func (r *Registry) OnRenderStart(context.Context, string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (r *Registry) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// OnRouteComplete implements observability.RouteHooks.
func (r *Registry) OnRouteComplete(_ context.Context, kind string, bends int) {
	r.RoutesTotal.WithLabelValues(kind, "committed").Inc()
	r.RouteBends.Observe(float64(bends))
}

// OnRouteCancel implements observability.RouteHooks.
func (r *Registry) OnRouteCancel(_ context.Context, kind string) {
	r.RoutesTotal.WithLabelValues(kind, "cancelled").Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.ServerHooks.
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse implements observability.ServerHooks.
func (r *Registry) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.RouteHooks    = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.ServerHooks   = (*Registry)(nil)
)
