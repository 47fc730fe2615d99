package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveReservation(t *testing.T) {
	m := NewWithRegistry("repair-slots", prometheus.NewRegistry())

	m.ObserveReservation("ok")
	m.ObserveReservation("ok")
	m.ObserveReservation("slot_full")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("repair-slots", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("repair-slots", "slot_full")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveReservation("ok")
		m.ObserveRelease("ok")
		m.ObserveTxRetry("serialization_failure")
	})
}
