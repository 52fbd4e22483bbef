// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the module.
const (
	// Engine metrics.
	MetricRuns              = "contagion_runs_total"
	MetricRunErrors         = "contagion_run_errors_total"
	MetricDaysSimulated     = "contagion_days_simulated_total"
	MetricRunDuration       = "contagion_run_duration_seconds"
	MetricCapacityBreaches  = "contagion_capacity_breaches_total"
	MetricResultCacheHits   = "contagion_result_cache_hits_total"
	MetricResultCacheMisses = "contagion_result_cache_misses_total"
	MetricProjections       = "contagion_projections_total"

	// Scenario cache metrics.
	MetricCacheHits   = "contagion_cache_hits_total"
	MetricCacheMisses = "contagion_cache_misses_total"
	MetricCacheSize   = "contagion_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
