package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BookingCreated()
	m.BookingCreated()
	m.Transition("pending", "confirmed")
	m.Failure("create_booking", "no_availability")
	m.UnitStatusChanged("cleaning")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("pending", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("create_booking", "no_availability")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitStatusChanges.WithLabelValues("cleaning")))
}

func TestMetrics_Histogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAvailability(25 * time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "hms_availability_query_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.Transition("a", "b")
		m.Failure("op", "kind")
		m.UnitStatusChanged("available")
		m.ObserveAvailability(time.Second)
	})
}
