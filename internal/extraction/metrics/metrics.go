package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the extraction pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Registry call latencies by endpoint
	RegistryLatency *prometheus.HistogramVec

	// Registry call failures by endpoint
	RegistryFailures *prometheus.CounterVec

	// Establishment pages fetched
	PagesFetched prometheus.Counter

	// Establishments received from the registry
	FacilitiesExtracted prometheus.Counter

	// Whole-run latency by entry point and outcome
	RunLatency *prometheus.HistogramVec

	// Records rejected by the transformer, by error code
	TransformFailures *prometheus.CounterVec
}

// New creates the extraction metrics and registers them with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sirene_registry_request_duration_seconds",
			Help:    "Duration of registry calls by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}), // endpoint: "legal_unit", "establishments"

		RegistryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sirene_registry_failures_total",
			Help: "Total failed registry calls by endpoint",
		}, []string{"endpoint"}),

		PagesFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "sirene_establishment_pages_total",
			Help: "Total establishment pages fetched",
		}),

		FacilitiesExtracted: f.NewCounter(prometheus.CounterOpts{
			Name: "sirene_establishments_extracted_total",
			Help: "Total establishment records received from the registry",
		}),

		RunLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sirene_extraction_duration_seconds",
			Help:    "Duration of complete extraction runs",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		}, []string{"entrypoint", "outcome"}),

		TransformFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sirene_transform_failures_total",
			Help: "Total transformation failures by error code",
		}, []string{"code"}),
	}
}

// ObserveRegistryCall records one registry call.
func (m *Metrics) ObserveRegistryCall(endpoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RegistryLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	if err != nil {
		m.RegistryFailures.WithLabelValues(endpoint).Inc()
	}
}

// ObservePage records one fetched establishment page of n records.
func (m *Metrics) ObservePage(n int) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.FacilitiesExtracted.Add(float64(n))
}

// ObserveRun records the latency of a whole run.
func (m *Metrics) ObserveRun(entrypoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.RunLatency.WithLabelValues(entrypoint, outcome).Observe(d.Seconds())
}

// IncrementTransformFailure records a rejected record.
func (m *Metrics) IncrementTransformFailure(code string) {
	if m != nil {
		m.TransformFailures.WithLabelValues(code).Inc()
	}
}
