package ports

import (
	"context"
	"time"
)

// RandomSource is the only stochastic primitive the simulation engine uses.
// Implementations must be deterministic for a given seed so that a run can
// be replayed. A RandomSource is not safe for concurrent use; each season
// owns its own instance.
type RandomSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64

	// Normal returns a Gaussian sample with the given mean and standard
	// deviation, built from two uniform draws.
	Normal(mean, stdDev float64) float64
}

// CacheStore defines the interface for caching encoded balance reports.
// Implementations could use Redis or in-memory storage. Caching is optional;
// a cache miss only costs a recomputation since reports are deterministic.
type CacheStore interface {
	// Get retrieves a cached value by key.
	// Returns the value and true if found, or nil and false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with an expiration time.
	// A zero duration means the item doesn't expire.
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like seasons, flips and cache hits.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like winner totals.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)     {}
