package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hms"

// Metrics holds the booking engine collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	bookingsCreated      prometheus.Counter
	transitions          *prometheus.CounterVec
	failures             *prometheus.CounterVec
	unitStatusChanges    *prometheus.CounterVec
	availabilityDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		bookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings committed by createBooking.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Committed booking status transitions.",
		}, []string{"from", "to"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_failures_total",
			Help:      "Booking operations that returned an error, by operation and error kind.",
		}, []string{"op", "kind"}),
		unitStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_status_changes_total",
			Help:      "Room unit status changes, by target status.",
		}, []string{"status"}),
		availabilityDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_query_seconds",
			Help:      "Latency of availability resolution.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Failure(op, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op, kind).Inc()
}

func (m *Metrics) UnitStatusChanged(status string) {
	if m == nil {
		return
	}
	m.unitStatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveAvailability(d time.Duration) {
	if m == nil {
		return
	}
	m.availabilityDuration.Observe(d.Seconds())
}
