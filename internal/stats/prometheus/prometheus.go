// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/contagion/internal/stats"
)

// runDurationBuckets covers runs from a few microseconds (short horizons)
// up to a second (century-long horizons).
var runDurationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are registered lazily on first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		if name == stats.MetricRunDuration {
			buckets = runDurationBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help(name), Buckets: buckets})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric called name from m, creating and
// registering it if needed. A metric already registered elsewhere under the
// same name is reused.
func getOrCreate[M prometheus.Collector](c *Collector, m map[string]M, name string, create func() M) M {
	c.mu.RLock()
	metric, ok := m[name]
	c.mu.RUnlock()
	if ok {
		return metric
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if metric, ok = m[name]; ok {
		return metric
	}

	metric = create()
	if err := c.registry.Register(metric); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				metric = existing
			}
		}
		// Otherwise keep the unregistered metric; updates still succeed.
	}
	m[name] = metric
	return metric
}

var helpText = map[string]string{
	stats.MetricRuns:              "Number of projections computed.",
	stats.MetricRunErrors:         "Number of projections rejected or cancelled.",
	stats.MetricDaysSimulated:     "Number of simulated days across all projections.",
	stats.MetricRunDuration:       "Wall time spent computing one projection.",
	stats.MetricCapacityBreaches:  "Number of projections in which bed capacity was exceeded.",
	stats.MetricResultCacheHits:   "Projections served from the result cache.",
	stats.MetricResultCacheMisses: "Projections that had to be computed.",
	stats.MetricProjections:       "Number of record views projected from results.",
	stats.MetricCacheHits:         "Scenario cache hits.",
	stats.MetricCacheMisses:       "Scenario cache misses.",
	stats.MetricCacheSize:         "Scenario documents held in the cache.",
}

func help(name string) string {
	if h, ok := helpText[name]; ok {
		return h
	}
	return name
}
