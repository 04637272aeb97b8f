// Package metrics exports simulation and engine measurements to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-paddock/infrastructure/simulation"
	"github.com/ahrav/go-paddock/internal/ports"
)

// Namespace prefixes every exported metric.
const Namespace = "paddock"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. Each instance owns its registry so several collectors can
// coexist in one process.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	operationLatency *prometheus.HistogramVec
	seasons          prometheus.Counter
	winnerFlips      prometheus.Counter
	winnerTotal      prometheus.Histogram
	workers          prometheus.Gauge
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	histograms       *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collector and registers its metrics in
// reg. A nil reg creates a fresh registry.
func NewPrometheusMetrics(reg *prometheus.Registry) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of simulation runs, seasons and other engine operations.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"operation", "mode"},
		),
		seasons: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "simulation_seasons_total",
			Help:      "Total number of simulated seasons.",
		}),
		winnerFlips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "simulation_winner_flips_total",
			Help:      "Total number of season-question pairs in which removing the question changed the winner.",
		}),
		winnerTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "simulation_winner_total_points",
			Help:      "Average winning total per simulation run.",
			Buckets:   prometheus.LinearBuckets(50, 50, 10),
		}),
		workers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "simulation_workers",
			Help:      "Concurrent season workers of the most recent run.",
		}),

		// Catch-all vectors for measurements without a dedicated metric.
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "operations_total",
				Help:      "Total number of engine operations by outcome.",
			},
			[]string{"operation", "result"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "system_state",
				Help:      "Current engine state values.",
			},
			[]string{"metric"},
		),
		histograms: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "observations",
				Help:      "Distributions recorded without a dedicated metric.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// Registry returns the registry the metrics are registered in.
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation, label(labels, "mode")).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	if value < 0 {
		return
	}
	switch metric {
	case simulation.MetricSeasons:
		pm.seasons.Add(value)
	case simulation.MetricFlips:
		pm.winnerFlips.Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, label(labels, "result")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case simulation.MetricWorkers:
		pm.workers.Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case simulation.MetricWinnerTotal:
		pm.winnerTotal.Observe(value)
	default:
		pm.histograms.WithLabelValues(metric).Observe(value)
	}
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func (pm *PrometheusMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, pm.registry); err != nil {
		return ports.NewMetricsError(path, "write_textfile", err)
	}
	return nil
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
