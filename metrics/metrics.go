// Package metrics exposes Prometheus instruments for the database, the
// random source, fights and HTTP requests, all on a private registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/fight"
	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/random"
)

const namespace = "boxing"

// Label values.
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultTimeout     = "timeout"
	ResultUnavailable = "unavailable"
	ResultParse       = "parse"
	ResultNotFound    = "not_found"
	ResultInvalid     = "invalid"
)

var (
	_ db.MetricsCollector = (*Collector)(nil)
	_ random.Observer     = (*Collector)(nil)
	_ fight.Observer      = (*Collector)(nil)
)

// Config controls whether instruments are registered at all.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Collector records observations. A nil *Collector records nothing.
type Collector struct {
	registry      *prometheus.Registry
	queryDuration *prometheus.HistogramVec
	randomFetch   *prometheus.HistogramVec
	fights        *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New builds a Collector, or returns nil when cfg.Enabled is false.
func New(cfg Config) *Collector {
	if !cfg.Enabled {
		return nil
	}

	var constLabels prometheus.Labels
	if cfg.ServiceName != "" {
		constLabels = prometheus.Labels{"service": cfg.ServiceName}
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "db_query_duration_seconds",
			Help:        "Duration of SQL statements by verb and result.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"verb", "result"}),
		randomFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "random_fetch_duration_seconds",
			Help:        "Latency of random number draws by result.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"result"}),
		fights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fights_total",
			Help:        "Fight resolution attempts by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.queryDuration,
		c.randomFetch,
		c.fights,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry, nil for a disabled collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format. It
// returns nil for a disabled collector.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return nil
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordQuery implements db.MetricsCollector.
func (c *Collector) RecordQuery(query string, d time.Duration, success bool) {
	if c == nil {
		return
	}
	result := ResultOK
	if !success {
		result = ResultError
	}
	c.queryDuration.WithLabelValues(sqlVerb(query), result).Observe(d.Seconds())
}

// ObserveRandomFetch implements random.Observer.
func (c *Collector) ObserveRandomFetch(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.randomFetch.WithLabelValues(Result(err)).Observe(d.Seconds())
}

// ObserveFight implements fight.Observer.
func (c *Collector) ObserveFight(err error) {
	if c == nil {
		return
	}
	c.fights.WithLabelValues(Result(err)).Inc()
}

// RecordHTTPRequest counts one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Result folds an error into a bounded label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, random.ErrTimeout):
		return ResultTimeout
	case errors.Is(err, random.ErrUnavailable):
		return ResultUnavailable
	case errors.Is(err, random.ErrParse):
		return ResultParse
	case errors.Is(err, models.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, models.ErrValidation):
		return ResultInvalid
	default:
		return ResultError
	}
}

func sqlVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
