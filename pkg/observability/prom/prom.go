// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.NewRegistry())
//	m.Install()
//	http.Handle("/metrics", m.Handler())
//
// All metrics share the "repertoire" namespace.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/repertoire/pkg/observability"
)

const namespace = "repertoire"

// Metrics holds the collectors fed by the hook methods. It implements
// [observability.BuildHooks], [observability.PracticeHooks],
// [observability.CacheHooks] and [observability.HTTPHooks].
type Metrics struct {
	gatherer prometheus.Gatherer

	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	graphNodes    *prometheus.GaugeVec
	graphEdges    *prometheus.GaugeVec
	linesSkipped  *prometheus.CounterVec
	inferredEdges *prometheus.CounterVec

	rounds      *prometheus.CounterVec
	roundLength *prometheus.HistogramVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default Prometheus registry.
func New(reg *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	m := &Metrics{
		gatherer: gatherer,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_builds_total",
			Help:      "Graph builds by color and result.",
		}, []string{"color", "result"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Time spent building a graph.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"color"}),
		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Positions in the most recently built graph.",
		}, []string{"color"}),
		graphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Moves in the most recently built graph.",
		}, []string{"color"}),
		linesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_lines_skipped_total",
			Help:      "Dataset lines rejected during builds, by error code.",
		}, []string{"color", "reason"}),
		inferredEdges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_inferred_edges_total",
			Help:      "Edges added by transposition inference.",
		}, []string{"color"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "practice_rounds_total",
			Help:      "Finished practice rounds by outcome.",
		}, []string{"color", "outcome"}),
		roundLength: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "practice_round_plies",
			Help:      "Plies played per practice round.",
			Buckets:   prometheus.LinearBuckets(2, 2, 10),
		}, []string{"color"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by key type.",
		}, []string{"type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by key type.",
		}, []string{"type"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests by host and status.",
		}, []string{"method", "host", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outgoing HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_errors_total",
			Help:      "Outgoing HTTP requests that failed without a response.",
		}, []string{"method", "host"}),
	}

	registerer.MustRegister(
		m.builds, m.buildDuration, m.graphNodes, m.graphEdges, m.linesSkipped, m.inferredEdges,
		m.rounds, m.roundLength,
		m.cacheHits, m.cacheMisses, m.cacheBytes,
		m.requests, m.requestDuration, m.requestErrors,
	)
	return m
}

// Install registers m for every hook category.
func (m *Metrics) Install() {
	observability.SetBuildHooks(m)
	observability.SetPracticeHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry m was created with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) OnBuildStart(context.Context, string, int) {}

func (m *Metrics) OnBuildComplete(_ context.Context, color string, nodes, edges int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.builds.WithLabelValues(color, result).Inc()
	m.buildDuration.WithLabelValues(color).Observe(duration.Seconds())
	if err == nil {
		m.graphNodes.WithLabelValues(color).Set(float64(nodes))
		m.graphEdges.WithLabelValues(color).Set(float64(edges))
	}
}

func (m *Metrics) OnLineSkipped(_ context.Context, color, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.linesSkipped.WithLabelValues(color, reason).Inc()
}

func (m *Metrics) OnInferComplete(_ context.Context, color string, added, _ int, _ time.Duration) {
	m.inferredEdges.WithLabelValues(color).Add(float64(added))
}

func (m *Metrics) OnRoundComplete(_ context.Context, color, outcome string, plies int) {
	m.rounds.WithLabelValues(color, outcome).Inc()
	m.roundLength.WithLabelValues(color).Observe(float64(plies))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest is a no-op; requests are counted once their status is known.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	m.requests.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.requestErrors.WithLabelValues(method, host).Inc()
}
