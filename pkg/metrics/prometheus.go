package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "govtwool"

// Prometheus records cache router activity per provider operation.
type Prometheus struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	staleServed   *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewPrometheus registers the router collectors on reg. Collectors already
// registered by an earlier call are reused.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Prometheus{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "cache lookups answered from a fresh entry or a coalesced fetch",
		}, []string{"operation"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "cache lookups that started a provider fetch",
		}, []string{"operation"}),
		staleServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "stale_served_total",
			Help:      "stale entries served because the provider fetch failed",
		}, []string{"operation"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fetch_errors_total",
			Help:      "failed provider fetches",
		}, []string{"operation"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fetch_duration_seconds",
			Help:      "duration of provider fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	var err error
	if m.cacheHits, err = register(reg, "cache hits counter", m.cacheHits); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = register(reg, "cache misses counter", m.cacheMisses); err != nil {
		return nil, err
	}
	if m.staleServed, err = register(reg, "stale served counter", m.staleServed); err != nil {
		return nil, err
	}
	if m.fetchErrors, err = register(reg, "fetch errors counter", m.fetchErrors); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = register(reg, "fetch duration histogram", m.fetchDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, name string, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("cannot register %s: %w", name, err)
}

func (m *Prometheus) CacheHit(op string) {
	m.cacheHits.WithLabelValues(op).Inc()
}

func (m *Prometheus) CacheMiss(op string) {
	m.cacheMisses.WithLabelValues(op).Inc()
}

func (m *Prometheus) StaleServed(op string) {
	m.staleServed.WithLabelValues(op).Inc()
}

func (m *Prometheus) FetchObserved(op string, took time.Duration, err error) {
	m.fetchDuration.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(op).Inc()
	}
}
