// Package metrics records scoring pass outcomes as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of every pass run by one process.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	passes          prometheus.Counter
	datasetsLoaded  prometheus.Counter
	datasetsDropped *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	passDuration    prometheus.Histogram
	countriesScored *prometheus.GaugeVec
}

var _ contract.PassObserver = &Recorder{} // Compile-time check

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the pass duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// NewRecorder creates a recorder on its own registry so that Go runtime
// metrics stay out of the textfile.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "viability",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.passes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "passes_total",
		Help:      "Total number of scoring passes completed",
	})
	r.datasetsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "datasets_loaded_total",
		Help:      "Total number of datasets read from the source",
	})
	r.datasetsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "datasets_dropped_total",
		Help:      "Total number of datasets rejected by quality checks",
	}, []string{"dimension"})
	r.fallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of dimension scorings that used fallback tables",
	}, []string{"dimension"})
	r.passDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "pass_duration_seconds",
		Help:      "Histogram of scoring pass duration in seconds",
		Buckets:   r.buckets,
	})
	r.countriesScored = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "countries_scored",
		Help:      "Number of countries scored in the last pass",
	}, []string{"dimension"})
	return r
}

// ObservePass implements the contract.PassObserver interface.
func (r *Recorder) ObservePass(result schema.PassResult, loaded int, elapsed time.Duration) {
	r.passes.Inc()
	r.datasetsLoaded.Add(float64(loaded))
	r.passDuration.Observe(elapsed.Seconds())

	for _, dim := range schema.AllDimensions {
		res, ok := result.Dimensions[dim]
		if !ok {
			continue
		}
		label := string(dim)
		dropped := 0
		for _, rep := range res.Datasets {
			if !rep.Accepted {
				dropped++
			}
		}
		r.datasetsDropped.WithLabelValues(label).Add(float64(dropped))
		if res.UsedFallback {
			r.fallbacks.WithLabelValues(label).Inc()
		}
		r.countriesScored.WithLabelValues(label).Set(float64(len(res.Scores)))
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
