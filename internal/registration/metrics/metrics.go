package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration engine.
type Metrics struct {
	Admissions    *prometheus.CounterVec
	Cancellations *prometheus.CounterVec
	Promotions    prometheus.Counter
	WaitlistDepth *prometheus.GaugeVec
}

// New creates and registers all registration module metrics.
func New() *Metrics {
	return &Metrics{
		Admissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_registrations_total",
			Help: "Registrations admitted, by resulting state",
		}, []string{"state"}),
		Cancellations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_registration_cancellations_total",
			Help: "Registration cancellations, by who initiated them",
		}, []string{"initiator"}),
		Promotions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_waitlist_promotions_total",
			Help: "Waitlisted registrations promoted to confirmed",
		}),
		WaitlistDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eventhub_waitlist_depth",
			Help: "Current waitlist depth per event",
		}, []string{"event_id"}),
	}
}

// IncrementAdmission records an admission by resulting state.
func (m *Metrics) IncrementAdmission(state string) {
	m.Admissions.WithLabelValues(state).Inc()
}

// IncrementCancellation records a cancellation by initiator role.
func (m *Metrics) IncrementCancellation(initiator string) {
	m.Cancellations.WithLabelValues(initiator).Inc()
}

// IncrementPromotion records a waitlist promotion.
func (m *Metrics) IncrementPromotion() {
	m.Promotions.Inc()
}

// SetWaitlistDepth tracks the waitlist length for an event.
func (m *Metrics) SetWaitlistDepth(eventID string, depth int) {
	m.WaitlistDepth.WithLabelValues(eventID).Set(float64(depth))
}
