package client

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hrdir"

// Cache lookup outcomes used as the "result" label.
const (
	cacheResultHit   = "hit"
	cacheResultMiss  = "miss"
	cacheResultError = "error"
)

// clientMetrics holds the Prometheus instruments updated by the executor.
type clientMetrics struct {
	requests     *prometheus.CounterVec
	retries      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

func newClientMetrics() *clientMetrics {
	return &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "HTTP attempts sent to the HR directory API, by method and status code.",
		}, []string{"method", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retries_total",
			Help:      "Attempts retried after a retryable status, by status code.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of single HTTP attempts against the HR directory API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups performed by get-by-id calls, by result.",
		}, []string{"result"}),
	}
}

// register adds the instruments to reg. Instruments already registered by an
// earlier client are reused so several clients can share one registry.
func (m *clientMetrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	var err error
	if m.requests, err = registerOrReuse(reg, m.requests); err != nil {
		return err
	}
	if m.retries, err = registerOrReuse(reg, m.retries); err != nil {
		return err
	}
	if m.duration, err = registerOrReuse(reg, m.duration); err != nil {
		return err
	}
	if m.cacheLookups, err = registerOrReuse(reg, m.cacheLookups); err != nil {
		return err
	}
	return nil
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *clientMetrics) observeAttempt(method string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *clientMetrics) observeRetry(status int) {
	m.retries.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *clientMetrics) observeCache(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}
