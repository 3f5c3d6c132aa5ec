package control

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ring/core/concurrency"
)

func TestRingMetrics_CountsReservations(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := NewRingMetrics(reg, "test")
	require.NoError(t, err)

	rb, err := concurrency.NewRingBuffer[int](4, nil, concurrency.WithObserver(m))
	require.NoError(t, err)
	require.NoError(t, m.TrackCursor(rb))

	for i := 0; i < 9; i++ {
		rb.Add(i)
	}
	assert.Equal(t, 9.0, testutil.ToFloat64(m.reservations))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.retries))

	count, err := testutil.GatherAndCount(reg,
		"hioload_ring_reservations_total", "hioload_ring_cursor", "hioload_ring_capacity")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "hioload_ring_cursor":
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		case "hioload_ring_capacity":
			assert.Equal(t, 4.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestRingMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRingMetrics(reg, "dup")
	require.NoError(t, err)

	_, err = NewRingMetrics(reg, "dup")
	assert.Error(t, err)
	first.OnReserve(0)
	n, err := testutil.GatherAndCount(reg, "hioload_ring_reservations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed duplicate must not unregister the original")

	first.Unregister()
	_, err = NewRingMetrics(reg, "dup")
	assert.NoError(t, err)
}

func TestRingMetrics_OnContention(t *testing.T) {
	m, err := NewRingMetrics(prometheus.NewRegistry(), "c")
	require.NoError(t, err)
	m.OnContention()
	m.OnContention()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.retries))
}
