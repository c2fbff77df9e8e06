// Package metrics exports sample store metrics through Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "merobase"

// Recorder implements sample.MetricsRecorder on a private registry.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	samples    prometheus.Gauge
	recoveries prometheus.Counter
}

// NewRecorder creates a recorder. When withRuntime is set the Go runtime and
// process collectors are registered as well.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_operations_total",
			Help:      "Sample store operations by outcome.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_operation_duration_seconds",
			Help:      "Latency of sample store operations including persistence.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Samples currently held by the store.",
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_recoveries_total",
			Help:      "Corrupt sample documents replaced by an empty collection.",
		}),
	}
	r.registry.MustRegister(r.operations, r.durations, r.samples, r.recoveries)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Observe counts one operation and records its latency.
func (r *Recorder) Observe(operation string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.durations.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) SetSampleCount(n int) {
	r.samples.Set(float64(n))
}

func (r *Recorder) DocumentRecovered() {
	r.recoveries.Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
