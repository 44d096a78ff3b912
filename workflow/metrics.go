package workflow

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters the workflow service exposes alongside the
// ambient /metrics endpoint, the supplemented observability layer the
// distilled scope left out but an ambient stack always carries.
type Metrics struct {
	Operations *prometheus.CounterVec
}

// NewMetrics registers the workflow counters against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry across test runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paymentflow",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Count of workflow operations by name and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.Operations)
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := asAppErrorKind(err); ok {
			outcome = string(kind)
		}
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}
