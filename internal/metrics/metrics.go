package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orders"

type Metrics struct {
	Received  *prometheus.CounterVec
	Processed *prometheus.CounterVec
	Intake    *prometheus.CounterVec
}

// New registers the order counters on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Received: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_total",
			Help:      "Queued orders received by a consumer, by lane.",
		}, []string{"lane"}),
		Processed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_total",
			Help:      "Consumed orders by lane and outcome.",
		}, []string{"lane", "outcome"}),
		Intake: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_requests_total",
			Help:      "Intake requests by lane and result.",
		}, []string{"lane", "result"}),
	}
}
