package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics of the list/detail controllers.
// A nil *Metrics records nothing.
type Metrics struct {
	LoadsTotal          *prometheus.CounterVec
	GatewayCallDuration *prometheus.HistogramVec
	FaultsTotal         *prometheus.CounterVec
	RejectedSubmissions *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "The total number of collection loads by view and outcome",
		}, []string{"view", "outcome"}),
		GatewayCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Time taken by collection gateway calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view", "operation"}),
		FaultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "The total number of reported faults",
		}, []string{"view", "kind", "operation"}),
		RejectedSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_submissions_total",
			Help:      "Submissions rejected because one of the same kind was in flight",
		}, []string{"view", "operation"}),
	}
}

// ObserveCall records the duration of a gateway call started at start
func (m *Metrics) ObserveCall(view, operation string, start time.Time) {
	if m == nil {
		return
	}
	m.GatewayCallDuration.WithLabelValues(view, operation).Observe(time.Since(start).Seconds())
}

// LoadSettled counts a finished load
func (m *Metrics) LoadSettled(view string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.LoadsTotal.WithLabelValues(view, outcome).Inc()
}

// Fault counts a reported fault
func (m *Metrics) Fault(view, kind, operation string) {
	if m == nil {
		return
	}
	m.FaultsTotal.WithLabelValues(view, kind, operation).Inc()
}

// Rejected counts a duplicate submission
func (m *Metrics) Rejected(view, operation string) {
	if m == nil {
		return
	}
	m.RejectedSubmissions.WithLabelValues(view, operation).Inc()
}
