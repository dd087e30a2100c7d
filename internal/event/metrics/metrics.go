package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the event module.
type Metrics struct {
	EventsCreated      prometheus.Counter
	Transitions        *prometheus.CounterVec
	TransitionDuration prometheus.Histogram
}

// New creates and registers all event module metrics.
func New() *Metrics {
	return &Metrics{
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_events_created_total",
			Help: "Total number of events created",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_event_transitions_total",
			Help: "Event status transitions by target status",
		}, []string{"target"}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventhub_event_transition_duration_seconds",
			Help:    "Duration of event transitions including cascade cancellation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful event creation.
func (m *Metrics) IncrementCreated() {
	m.EventsCreated.Inc()
}

// IncrementTransition records a successful transition to target.
func (m *Metrics) IncrementTransition(target string) {
	m.Transitions.WithLabelValues(target).Inc()
}

// ObserveTransition records the duration of a transition operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
