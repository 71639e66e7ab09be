package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/gitstat/pkg/errors"
)

// Prometheus implements every hook interface on top of a private
// prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	searchIssued     prometheus.Counter
	searchSuperseded prometheus.Counter
	searchCompleted  *prometheus.CounterVec
	searchDuration   prometheus.Histogram
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitstat_cache_events_total",
				Help: "Cache lookups and writes by key type and result",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitstat_cache_written_bytes_total",
				Help: "Bytes written to the response cache",
			},
			[]string{"key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitstat_http_requests_total",
				Help: "Completed GitHub API requests by status",
			},
			[]string{"method", "host", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitstat_http_request_duration_seconds",
				Help:    "Duration of GitHub API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitstat_http_errors_total",
				Help: "GitHub API requests that failed before a response, by error code",
			},
			[]string{"method", "host", "code"},
		),
		searchIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitstat_search_issued_total",
			Help: "Searches issued after the settle window",
		}),
		searchSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitstat_search_superseded_total",
			Help: "Scheduled or in-flight searches invalidated by a newer edit",
		}),
		searchCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitstat_search_completed_total",
				Help: "Current-generation searches by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitstat_search_duration_seconds",
			Help:    "Duration of current-generation searches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	p.registry.MustRegister(
		p.cacheEvents, p.cacheBytes,
		p.httpRequests, p.httpDuration, p.httpErrors,
		p.searchIssued, p.searchSuperseded, p.searchCompleted, p.searchDuration,
	)
	return p
}

// Register installs p as the global cache, HTTP and search hooks.
func (p *Prometheus) Register() {
	SetCacheHooks(p)
	SetHTTPHooks(p)
	SetSearchHooks(p)
}

// Registry exposes the underlying registry as a gatherer.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
// The write is atomic (temp file + rename).
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, statusCode int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	p.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, err error) {
	p.httpErrors.WithLabelValues(method, host, string(errors.Classify(err))).Inc()
}

func (p *Prometheus) OnSearchIssued(context.Context, uint64) {
	p.searchIssued.Inc()
}

func (p *Prometheus) OnSearchSuperseded(context.Context, uint64) {
	p.searchSuperseded.Inc()
}

func (p *Prometheus) OnSearchCompleted(_ context.Context, _ uint64, _ int, d time.Duration, err error) {
	outcome := "resolved"
	switch {
	case errors.IsAborted(err):
		outcome = "aborted"
	case err != nil:
		outcome = "failed"
	}
	p.searchCompleted.WithLabelValues(outcome).Inc()
	p.searchDuration.Observe(d.Seconds())
}

var (
	_ CacheHooks  = (*Prometheus)(nil)
	_ HTTPHooks   = (*Prometheus)(nil)
	_ SearchHooks = (*Prometheus)(nil)
)
