package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	cloneDuration  *prom.HistogramVec
	searchRequests prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "protodoc",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "protodoc",
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "protodoc",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.cloneDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "protodoc",
		Name:      "clone_repo_duration_seconds",
		Help:      "Duration of repository clone or update operations",
		Buckets:   prom.DefBuckets,
	}, []string{"repo", "result"})
	pr.searchRequests = prom.NewCounter(prom.CounterOpts{
		Namespace: "protodoc",
		Name:      "search_requests_total",
		Help:      "Search API requests served",
	})

	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.cloneDuration, pr.searchRequests)
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) ObserveCloneDuration(repo string, d time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	pr.cloneDuration.WithLabelValues(repo, result).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncSearchRequest() {
	pr.searchRequests.Inc()
}

// Handler returns an http.Handler serving the recorder's registry.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
