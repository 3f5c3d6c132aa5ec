// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus reservation metrics for a ring. RingMetrics is installed as the
// ring's observer and counts every cursor advance and every lost CAS.

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-ring/api"
)

const metricsNamespace = "hioload_ring"

var _ api.RingObserver = (*RingMetrics)(nil)

// RingMetrics holds the counters for one named ring.
type RingMetrics struct {
	reservations prometheus.Counter
	retries      prometheus.Counter
	collectors   []prometheus.Collector
	reg          prometheus.Registerer
	labels       prometheus.Labels
}

// NewRingMetrics creates and registers counters labelled with ring=name.
func NewRingMetrics(reg prometheus.Registerer, name string) (*RingMetrics, error) {
	labels := prometheus.Labels{"ring": name}
	m := &RingMetrics{
		reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "reservations_total",
			Help:        "Successful cursor advances (one per completed Add).",
			ConstLabels: labels,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "cas_retries_total",
			Help:        "Cursor CAS attempts lost to a concurrent writer.",
			ConstLabels: labels,
		}),
		reg:    reg,
		labels: labels,
	}
	for _, c := range []prometheus.Collector{m.reservations, m.retries} {
		if err := reg.Register(c); err != nil {
			// Unregister matches by descriptor: undo only what this call registered.
			m.Unregister()
			return nil, err
		}
		m.collectors = append(m.collectors, c)
	}
	return m, nil
}

// TrackCursor exports the ring's current cursor and capacity as gauges.
func (m *RingMetrics) TrackCursor(ring api.CursorReader) error {
	cursorGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "cursor",
		Help:        "Index the next reservation starts from.",
		ConstLabels: m.labels,
	}, func() float64 { return float64(ring.Cursor()) })
	capGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "capacity",
		Help:        "Fixed slot count.",
		ConstLabels: m.labels,
	}, func() float64 { return float64(ring.Cap()) })
	for _, c := range []prometheus.Collector{cursorGauge, capGauge} {
		if err := m.reg.Register(c); err != nil {
			return err
		}
		m.collectors = append(m.collectors, c)
	}
	return nil
}

// OnReserve implements api.RingObserver.
func (m *RingMetrics) OnReserve(uint64) { m.reservations.Inc() }

// OnContention implements api.RingObserver.
func (m *RingMetrics) OnContention() { m.retries.Inc() }

// Unregister removes every collector this RingMetrics registered.
func (m *RingMetrics) Unregister() {
	for _, c := range m.collectors {
		m.reg.Unregister(c)
	}
}
